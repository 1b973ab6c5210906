package domain

import (
	"context"
)

// Catalog provides read access to the storefront product catalog
type Catalog interface {
	// GetBooks returns a page of books, optionally filtered by tag slug.
	// Returns (items, totalSize, error) for pagination support
	GetBooks(ctx context.Context, tag string, page, pageSize int) ([]Book, int, error)

	// GetBook returns a single book by id
	GetBook(ctx context.Context, id int64) (*Book, error)

	// GetBooksByIDs returns the books matching ids in a single batched
	// request. Result order is not guaranteed to match the input; ids
	// that no longer resolve are simply absent, not an error.
	GetBooksByIDs(ctx context.Context, ids []int64) ([]Book, error)

	// GetPacks returns all book packs
	GetPacks(ctx context.Context) ([]Pack, error)

	// GetPack returns a single pack by id, with contained books populated
	GetPack(ctx context.Context, id int64) (*Pack, error)

	// GetPacksByIDs returns the packs matching ids in a single batched
	// request, with the same absence semantics as GetBooksByIDs
	GetPacksByIDs(ctx context.Context, ids []int64) ([]Pack, error)

	// GetTags returns all browsable tags
	GetTags(ctx context.Context) ([]Tag, error)
}
