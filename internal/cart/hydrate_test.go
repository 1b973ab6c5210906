package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/folio-sh/folio/internal/domain"
)

// fakeCatalog resolves only the ids it was seeded with and counts calls
type fakeCatalog struct {
	books map[int64]domain.Book
	packs map[int64]domain.Pack
	err   error

	bookCalls int
	packCalls int
}

func newFakeCatalog(bookIDs []int64, packIDs []int64) *fakeCatalog {
	f := &fakeCatalog{
		books: make(map[int64]domain.Book),
		packs: make(map[int64]domain.Pack),
	}
	for _, id := range bookIDs {
		f.books[id] = domain.Book{ID: id, Title: "book", Price: 10}
	}
	for _, id := range packIDs {
		f.packs[id] = domain.Pack{ID: id, Title: "pack", Price: 25}
	}
	return f
}

func (f *fakeCatalog) GetBooksByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	f.bookCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Book
	// Deliberately iterate backwards: result order is not guaranteed
	for i := len(ids) - 1; i >= 0; i-- {
		if b, ok := f.books[ids[i]]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetPacksByIDs(ctx context.Context, ids []int64) ([]domain.Pack, error) {
	f.packCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Pack
	for _, id := range ids {
		if p, ok := f.packs[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetBooks(ctx context.Context, tag string, page, pageSize int) ([]domain.Book, int, error) {
	return nil, 0, nil
}
func (f *fakeCatalog) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeCatalog) GetPacks(ctx context.Context) ([]domain.Pack, error) { return nil, nil }
func (f *fakeCatalog) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeCatalog) GetTags(ctx context.Context) ([]domain.Tag, error) { return nil, nil }

func TestHydrateBooks_DropsUnresolvableKeepsOrder(t *testing.T) {
	catalog := newFakeCatalog([]int64{1, 3}, nil)
	h := NewHydrator(catalog, nil)

	items := []domain.LineItem{
		{ItemID: 1, Quantity: 2, AddedAt: 100},
		{ItemID: 2, Quantity: 1, AddedAt: 200}, // unresolvable
		{ItemID: 3, Quantity: 4, AddedAt: 300},
	}

	hydrated, err := h.HydrateBooks(context.Background(), items)
	if err != nil {
		t.Fatalf("HydrateBooks: %v", err)
	}

	if len(hydrated) != 2 {
		t.Fatalf("got %d hydrated items, want 2", len(hydrated))
	}
	if hydrated[0].ID != 1 || hydrated[1].ID != 3 {
		t.Errorf("order not preserved: got [%d, %d], want [1, 3]", hydrated[0].ID, hydrated[1].ID)
	}
	if hydrated[0].Quantity != 2 || hydrated[0].AddedAt != 100 {
		t.Errorf("sticky values lost: %+v", hydrated[0])
	}
	if hydrated[1].Quantity != 4 || hydrated[1].AddedAt != 300 {
		t.Errorf("sticky values lost: %+v", hydrated[1])
	}
}

func TestHydrateBooks_EmptyInputSkipsNetwork(t *testing.T) {
	catalog := newFakeCatalog(nil, nil)
	h := NewHydrator(catalog, nil)

	hydrated, err := h.HydrateBooks(context.Background(), nil)
	if err != nil {
		t.Fatalf("HydrateBooks: %v", err)
	}
	if len(hydrated) != 0 {
		t.Errorf("got %d items, want 0", len(hydrated))
	}
	if catalog.bookCalls != 0 {
		t.Errorf("expected no catalog call, got %d", catalog.bookCalls)
	}
}

func TestHydrateBooks_SingleBatchedCall(t *testing.T) {
	catalog := newFakeCatalog([]int64{1, 2, 3, 4, 5}, nil)
	h := NewHydrator(catalog, nil)

	items := make([]domain.LineItem, 5)
	for i := range items {
		items[i] = domain.LineItem{ItemID: int64(i + 1), Quantity: 1}
	}

	if _, err := h.HydrateBooks(context.Background(), items); err != nil {
		t.Fatalf("HydrateBooks: %v", err)
	}
	if catalog.bookCalls != 1 {
		t.Errorf("expected exactly one batched call, got %d", catalog.bookCalls)
	}
}

func TestHydrateBooks_BatchFailureFailsWhole(t *testing.T) {
	catalog := newFakeCatalog([]int64{1}, nil)
	catalog.err = errors.New("boom")
	h := NewHydrator(catalog, nil)

	hydrated, err := h.HydrateBooks(context.Background(), []domain.LineItem{{ItemID: 1, Quantity: 1}})
	if err == nil {
		t.Fatal("expected error")
	}
	if hydrated != nil {
		t.Errorf("expected no partial result, got %d items", len(hydrated))
	}
}

func TestHydratePacks_SameContract(t *testing.T) {
	catalog := newFakeCatalog(nil, []int64{7})
	h := NewHydrator(catalog, nil)

	items := []domain.LineItem{
		{ItemID: 7, Quantity: 1, AddedAt: 50},
		{ItemID: 8, Quantity: 1, AddedAt: 60}, // unresolvable
	}

	hydrated, err := h.HydratePacks(context.Background(), items)
	if err != nil {
		t.Fatalf("HydratePacks: %v", err)
	}
	if len(hydrated) != 1 || hydrated[0].ID != 7 || hydrated[0].AddedAt != 50 {
		t.Errorf("unexpected result: %+v", hydrated)
	}
	if catalog.packCalls != 1 {
		t.Errorf("expected one batched call, got %d", catalog.packCalls)
	}
}
