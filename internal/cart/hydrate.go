package cart

import (
	"context"
	"log/slog"

	"github.com/folio-sh/folio/internal/domain"
)

// Hydrator resolves stored line items into full product records by
// batch-fetching from the catalog. Hydrated results are never persisted;
// they are recomputed from the current line items and the current
// catalog on every call, so price and availability always reflect the
// latest catalog state. Only quantity and the add timestamp are carried
// over from the stored line items.
type Hydrator struct {
	catalog domain.Catalog
	logger  *slog.Logger
}

// NewHydrator creates a new Hydrator backed by the given catalog.
func NewHydrator(catalog domain.Catalog, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{catalog: catalog, logger: logger}
}

// HydrateBooks resolves book line items. A single batched catalog call
// is issued regardless of collection size. Output preserves the input
// order; line items whose book can no longer be resolved are dropped
// from the result (they stay in storage until explicitly removed or
// resolvable again). A failed batch fetch fails the whole call with no
// partial result.
func (h *Hydrator) HydrateBooks(ctx context.Context, items []domain.LineItem) ([]domain.CartBook, error) {
	if len(items) == 0 {
		return []domain.CartBook{}, nil
	}

	books, err := h.catalog.GetBooksByIDs(ctx, itemIDs(items))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	hydrated := make([]domain.CartBook, 0, len(items))
	for _, item := range items {
		book, ok := byID[item.ItemID]
		if !ok {
			h.logger.Debug("dropping unresolvable cart book", "id", item.ItemID)
			continue
		}
		hydrated = append(hydrated, domain.CartBook{
			Book:     book,
			Quantity: item.Quantity,
			AddedAt:  item.AddedAt,
		})
	}
	return hydrated, nil
}

// HydratePacks resolves pack line items with the same contract as
// HydrateBooks.
func (h *Hydrator) HydratePacks(ctx context.Context, items []domain.LineItem) ([]domain.CartPack, error) {
	if len(items) == 0 {
		return []domain.CartPack{}, nil
	}

	packs, err := h.catalog.GetPacksByIDs(ctx, itemIDs(items))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Pack, len(packs))
	for _, p := range packs {
		byID[p.ID] = p
	}

	hydrated := make([]domain.CartPack, 0, len(items))
	for _, item := range items {
		pack, ok := byID[item.ItemID]
		if !ok {
			h.logger.Debug("dropping unresolvable cart pack", "id", item.ItemID)
			continue
		}
		hydrated = append(hydrated, domain.CartPack{
			Pack:     pack,
			Quantity: item.Quantity,
			AddedAt:  item.AddedAt,
		})
	}
	return hydrated, nil
}

func itemIDs(items []domain.LineItem) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ItemID
	}
	return ids
}
