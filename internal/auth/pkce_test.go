package auth

import (
	"testing"
)

func TestChallengeS256_KnownVector(t *testing.T) {
	// Appendix B of RFC 7636
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	if got := ChallengeS256(verifier); got != want {
		t.Errorf("ChallengeS256 = %q, want %q", got, want)
	}
}

func TestNewVerifier_HighEntropyAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		v, err := NewVerifier()
		if err != nil {
			t.Fatalf("NewVerifier: %v", err)
		}
		// 32 random bytes base64url-encode to 43 characters, the RFC
		// minimum verifier length
		if len(v) != 43 {
			t.Fatalf("verifier length = %d, want 43", len(v))
		}
		if seen[v] {
			t.Fatal("duplicate verifier generated")
		}
		seen[v] = true
	}
}

func TestNewState_Unique(t *testing.T) {
	if NewState() == NewState() {
		t.Error("state values must be unique")
	}
}
