package search

import (
	"testing"

	"github.com/folio-sh/folio/internal/domain"
)

func testBooks() []domain.Book {
	return []domain.Book{
		{ID: 1, Title: "The Pragmatic Programmer", Authors: []string{"David Thomas", "Andrew Hunt"}},
		{ID: 2, Title: "Clean Code", Authors: []string{"Robert C. Martin"}},
		{ID: 3, Title: "Designing Data-Intensive Applications", Authors: []string{"Martin Kleppmann"}},
		{ID: 4, Title: "The Go Programming Language", Authors: []string{"Alan Donovan", "Brian Kernighan"}},
	}
}

func TestAdd_SkipsDuplicateIDs(t *testing.T) {
	idx := NewIndex()
	idx.Add(testBooks())
	idx.Add(testBooks())

	if idx.Len() != 4 {
		t.Errorf("Len() = %d after double add, want 4", idx.Len())
	}
}

func TestSearch_MatchesTitle(t *testing.T) {
	idx := NewIndex()
	idx.Add(testBooks())

	results := idx.Search("clean code", 0)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Book.ID != 2 {
		t.Errorf("top result = %q, want Clean Code", results[0].Book.Title)
	}
	if len(results[0].MatchedIndexes) == 0 {
		t.Error("expected matched indexes for highlighting")
	}
}

func TestSearch_MatchesAuthor(t *testing.T) {
	idx := NewIndex()
	idx.Add(testBooks())

	results := idx.Search("kleppmann", 0)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Book.ID != 3 {
		t.Errorf("top result = %q", results[0].Book.Title)
	}
}

func TestSearch_SubsequenceQuery(t *testing.T) {
	idx := NewIndex()
	idx.Add(testBooks())

	// sahilm matching only needs the runes in order, not adjacent
	results := idx.Search("prgmtic", 0)
	if len(results) == 0 {
		t.Fatal("no results for subsequence query")
	}
	if results[0].Book.ID != 1 {
		t.Errorf("top result = %q, want The Pragmatic Programmer", results[0].Book.Title)
	}
}

func TestSearch_Limit(t *testing.T) {
	idx := NewIndex()
	idx.Add(testBooks())

	results := idx.Search("the", 1)
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestSearch_EmptyAndWhitespaceQueries(t *testing.T) {
	idx := NewIndex()
	idx.Add(testBooks())

	for _, query := range []string{"", "   "} {
		if results := idx.Search(query, 0); results != nil {
			t.Errorf("Search(%q) = %v, want nil", query, results)
		}
	}
}

func TestSearch_NoMatch(t *testing.T) {
	idx := NewIndex()
	idx.Add(testBooks())

	if results := idx.Search("zzzzqqqq", 0); len(results) != 0 {
		t.Errorf("unexpected results: %v", results)
	}
}
