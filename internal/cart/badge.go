package cart

import (
	"log/slog"
	"sync"

	"github.com/folio-sh/folio/internal/domain"
)

// Badge decides whether the floating "added to cart" notification is
// shown. It derives visibility from combined cart-count deltas against
// two persisted scalars (last known count and a dismissed flag), so a
// dismissal survives restarts until new items arrive. Packs are weighted
// as one unit each in the count it observes, regardless of which
// collection changed.
type Badge struct {
	store  domain.BadgeStore
	logger *slog.Logger

	mu      sync.Mutex
	visible bool
}

// NewBadge creates the badge policy on top of the persisted scalar pair.
func NewBadge(store domain.BadgeStore, logger *slog.Logger) *Badge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Badge{store: store, logger: logger}
}

// Evaluate applies the visibility transition for the given combined item
// count and returns the resulting visibility. Persist failures are
// logged and swallowed: the badge is cosmetic and must never block a
// cart mutation.
func (b *Badge) Evaluate(count int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.store.Badge()

	switch {
	case count == 0:
		// Empty cart resets everything
		b.visible = false
		b.save(domain.BadgeState{})

	case count > state.LastKnownCount:
		// New items force the badge back, clearing any prior dismissal
		b.visible = true
		b.save(domain.BadgeState{LastKnownCount: count})

	case !state.Dismissed:
		// First look at a non-empty, non-dismissed cart
		b.visible = true

	default:
		// Dismissed and nothing new: leave visibility unchanged
	}

	return b.visible
}

// Dismiss hides the badge and records the dismissal at the given count,
// so only a later count increase (not the next evaluation) re-shows it.
func (b *Badge) Dismiss(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.visible = false
	b.save(domain.BadgeState{LastKnownCount: count, Dismissed: true})
}

// Visible returns the current visibility without re-evaluating.
func (b *Badge) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

func (b *Badge) save(state domain.BadgeState) {
	if err := b.store.SaveBadge(state); err != nil {
		b.logger.Warn("failed to persist badge state", "error", err)
	}
}
