package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/folio-sh/folio/internal/domain"
)

// Result is a search hit with match metadata for highlighting
type Result struct {
	Book           domain.Book
	Score          int   // Match score (higher = better, sahilm convention)
	MatchedIndexes []int // Character positions that matched in the search text
}

// Index is a client-side fuzzy search index over browsed books. It
// implements sahilm/fuzzy.Source for zero-allocation matching over
// pre-computed lowercase "title by authors" strings.
type Index struct {
	mu      sync.RWMutex
	books   []domain.Book
	texts   []string        // Pre-computed lowercase searchable text
	indexed map[int64]bool  // Track indexed ids to avoid duplicates
}

// NewIndex creates an empty search index.
func NewIndex() *Index {
	return &Index{indexed: make(map[int64]bool)}
}

// String returns the searchable text at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.texts[i] }

// Len returns the number of indexed books (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.texts) }

// Add indexes books, skipping ids already present.
func (idx *Index) Add(books []domain.Book) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, b := range books {
		if idx.indexed[b.ID] {
			continue
		}
		idx.indexed[b.ID] = true
		idx.books = append(idx.books, b)
		idx.texts = append(idx.texts, searchText(b))
	}
}

// Search returns up to limit results ranked best-first. A RankMatch
// prefilter keeps obviously unrelated titles away from the more
// expensive positional matcher.
func (idx *Index) Search(query string, limit int) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matches := sahilm.FindFrom(query, idx)
	if len(matches) == 0 {
		// Positional matching requires all query runes in order; fall
		// back to substring-rank matching for looser queries
		return idx.rankFallback(query, limit)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Book:           idx.books[m.Index],
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}

func (idx *Index) rankFallback(query string, limit int) []Result {
	type ranked struct {
		i    int
		rank int
	}
	var hits []ranked
	for i, text := range idx.texts {
		if rank := fuzzy.RankMatchNormalizedFold(query, text); rank >= 0 {
			hits = append(hits, ranked{i: i, rank: rank})
		}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].rank < hits[b].rank })

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{Book: idx.books[h.i], Score: -h.rank})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}

func searchText(b domain.Book) string {
	if len(b.Authors) == 0 {
		return strings.ToLower(b.Title)
	}
	return strings.ToLower(b.Title + " by " + b.AuthorLine())
}
