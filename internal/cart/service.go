package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/folio-sh/folio/internal/domain"
)

// State is the in-memory mirror of the cart consumed by presentation
// code. BookItems and PackItems shadow the persisted collections; Books
// and Packs hold the last hydrated results and are only populated by an
// explicit Load call, not kept in sync automatically.
type State struct {
	BookItems []domain.LineItem
	Books     []domain.CartBook
	PackItems []domain.LineItem
	Packs     []domain.CartPack
	Loading   bool
	Err       error
}

// Service is the single in-memory authority for cart state. It mediates
// every read and write against the persistent line-item stores and
// exposes book and pack operations symmetrically. Presentation code goes
// through the Service, never the stores directly, so the in-memory
// mirror stays reconcilable.
//
// After every successful mutation the service replaces its mirror with
// the collection returned by the store (read-after-write: the store, not
// a locally computed delta, is authoritative) and re-evaluates the badge
// policy on the combined count.
type Service struct {
	books    domain.LineItemStore
	packs    domain.LineItemStore
	hydrator *Hydrator
	badge    *Badge
	logger   *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewService creates the cart controller and loads both collections from
// the stores exactly once. There is no polling and no storage-change
// subscription; use Refresh to reconcile after out-of-band mutation.
func NewService(books, packs domain.LineItemStore, hydrator *Hydrator, badge *Badge, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		books:    books,
		packs:    packs,
		hydrator: hydrator,
		badge:    badge,
		logger:   logger,
	}
	s.state.BookItems = books.Get()
	s.state.PackItems = packs.Get()
	s.badge.Evaluate(s.TotalCount())
	return s
}

// === Book operations ===

// AddBook adds quantity of a book to the cart. Store write failures are
// recorded in the error state and returned; in-memory state is left
// unchanged on failure.
func (s *Service) AddBook(id int64, quantity int) error {
	items, err := s.books.Add(id, quantity)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state.BookItems = items
	s.state.Err = nil
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// RemoveBook removes a book line item. The hydrated slice is pruned in
// place so a cart view reflects the removal without a full reload.
func (s *Service) RemoveBook(id int64) error {
	items, err := s.books.Remove(id)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state.BookItems = items
	s.state.Books = pruneBooks(s.state.Books, id)
	s.state.Err = nil
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// UpdateBookQuantity sets a book's quantity. A quantity <= 0 delegates
// entirely to RemoveBook (same contract, same side effects).
func (s *Service) UpdateBookQuantity(id int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveBook(id)
	}

	items, err := s.books.UpdateQuantity(id, quantity)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state.BookItems = items
	for i := range s.state.Books {
		if s.state.Books[i].ID == id {
			s.state.Books[i].Quantity = quantity
		}
	}
	s.state.Err = nil
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// LoadBooks hydrates the current book line items. The store, not the
// possibly-stale mirror, is re-read first. On hydration failure the
// error is recorded, the previously hydrated slice is retained (no flash
// to empty on a transient failure) and an empty result is returned;
// the failure does not propagate past this boundary.
func (s *Service) LoadBooks(ctx context.Context) []domain.CartBook {
	s.setLoading(true)
	defer s.setLoading(false)

	items := s.books.Get()

	s.mu.Lock()
	s.state.BookItems = items
	s.mu.Unlock()

	if len(items) == 0 {
		s.mu.Lock()
		s.state.Books = []domain.CartBook{}
		s.mu.Unlock()
		return []domain.CartBook{}
	}

	hydrated, err := s.hydrator.HydrateBooks(ctx, items)
	if err != nil {
		s.logger.Error("failed to hydrate cart books", "error", err)
		s.setErr(err)
		return []domain.CartBook{}
	}

	s.mu.Lock()
	s.state.Books = hydrated
	s.state.Err = nil
	s.mu.Unlock()
	return hydrated
}

// === Pack operations ===

// AddPack adds a pack to the pack cart.
func (s *Service) AddPack(id int64) error {
	items, err := s.packs.Add(id, 1)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state.PackItems = items
	s.state.Err = nil
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// RemovePack removes a pack line item, pruning the hydrated slice.
func (s *Service) RemovePack(id int64) error {
	items, err := s.packs.Remove(id)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state.PackItems = items
	s.state.Packs = prunePacks(s.state.Packs, id)
	s.state.Err = nil
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// UpdatePackQuantity sets a pack's quantity, collapsing <= 0 to removal.
func (s *Service) UpdatePackQuantity(id int64, quantity int) error {
	if quantity <= 0 {
		return s.RemovePack(id)
	}

	items, err := s.packs.UpdateQuantity(id, quantity)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state.PackItems = items
	for i := range s.state.Packs {
		if s.state.Packs[i].ID == id {
			s.state.Packs[i].Quantity = quantity
		}
	}
	s.state.Err = nil
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// LoadPacks hydrates the current pack line items with the same contract
// as LoadBooks.
func (s *Service) LoadPacks(ctx context.Context) []domain.CartPack {
	s.setLoading(true)
	defer s.setLoading(false)

	items := s.packs.Get()

	s.mu.Lock()
	s.state.PackItems = items
	s.mu.Unlock()

	if len(items) == 0 {
		s.mu.Lock()
		s.state.Packs = []domain.CartPack{}
		s.mu.Unlock()
		return []domain.CartPack{}
	}

	hydrated, err := s.hydrator.HydratePacks(ctx, items)
	if err != nil {
		s.logger.Error("failed to hydrate cart packs", "error", err)
		s.setErr(err)
		return []domain.CartPack{}
	}

	s.mu.Lock()
	s.state.Packs = hydrated
	s.state.Err = nil
	s.mu.Unlock()
	return hydrated
}

// === Read-throughs ===
// These go straight to the stores, independent of the in-memory mirror,
// so they stay correct even when a view has not refreshed.

// InCart reports whether the book is in the cart.
func (s *Service) InCart(id int64) bool { return s.books.Has(id) }

// PackInCart reports whether the pack is in the pack cart.
func (s *Service) PackInCart(id int64) bool { return s.packs.Has(id) }

// BookQuantity returns the stored quantity for a book, 0 if absent.
func (s *Service) BookQuantity(id int64) int {
	item, ok := s.books.Item(id)
	if !ok {
		return 0
	}
	return item.Quantity
}

// BookItem returns the stored line item for a book.
func (s *Service) BookItem(id int64) (domain.LineItem, bool) { return s.books.Item(id) }

// PackItem returns the stored line item for a pack.
func (s *Service) PackItem(id int64) (domain.LineItem, bool) { return s.packs.Item(id) }

// ItemCount returns the raw book quantity sum.
func (s *Service) ItemCount() int { return s.books.ItemCount() }

// TotalCount returns the combined displayed count: book quantities sum
// plus one unit per pack line item, regardless of the pack's stored
// quantity field.
func (s *Service) TotalCount() int {
	return s.books.ItemCount() + len(s.packs.Get())
}

// === Clearing and reconciliation ===

// ClearCart clears the book cart store and resets the entire in-memory
// state, not just the book slices: a full cart clear means starting over.
func (s *Service) ClearCart() error {
	if err := s.books.Clear(); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state = State{
		BookItems: []domain.LineItem{},
		Books:     []domain.CartBook{},
		PackItems: []domain.LineItem{},
		Packs:     []domain.CartPack{},
	}
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// ClearPackCart clears the pack cart store and resets only the
// pack-related slices.
func (s *Service) ClearPackCart() error {
	if err := s.packs.Clear(); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.state.PackItems = []domain.LineItem{}
	s.state.Packs = []domain.CartPack{}
	s.state.Err = nil
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
	return nil
}

// Refresh re-reads both collections from the stores into the mirror.
// Used to reconcile after the store was mutated out of band.
func (s *Service) Refresh() {
	bookItems := s.books.Get()
	packItems := s.packs.Get()

	s.mu.Lock()
	s.state.BookItems = bookItems
	s.state.PackItems = packItems
	s.mu.Unlock()

	s.badge.Evaluate(s.TotalCount())
}

// === Badge ===

// DismissBadge hides the notification badge until new items arrive.
func (s *Service) DismissBadge() {
	s.badge.Dismiss(s.TotalCount())
}

// BadgeVisible returns the current badge visibility.
func (s *Service) BadgeVisible() bool { return s.badge.Visible() }

// === State access ===

// State returns a snapshot of the in-memory mirror. The contained slices
// must be treated as read-only.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the last recorded operation error, nil after a successful
// mutation.
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Err
}

func (s *Service) setErr(err error) {
	s.mu.Lock()
	s.state.Err = err
	s.mu.Unlock()
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.state.Loading = v
	s.mu.Unlock()
}

// The prune helpers allocate fresh slices: Load results were handed out
// to callers and share their backing arrays with the mirror, so an
// in-place filter would rewrite them behind their backs.
func pruneBooks(books []domain.CartBook, id int64) []domain.CartBook {
	out := make([]domain.CartBook, 0, len(books))
	for _, b := range books {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func prunePacks(packs []domain.CartPack, id int64) []domain.CartPack {
	out := make([]domain.CartPack, 0, len(packs))
	for _, p := range packs {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
