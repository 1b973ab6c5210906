package domain

// LineItemStore handles durable, synchronous persistence of one cart
// collection. The book cart and the pack cart are two independent
// instances of this abstraction. The store is the source of truth; any
// in-memory mirror must be reconcilable by re-reading it.
//
// Read paths (Get, Has, Item, ItemCount) never fail: unreadable or
// corrupt data degrades to an empty collection. Write paths return the
// underlying storage error to the caller.
type LineItemStore interface {
	// Get returns the full collection in insertion order, or an empty
	// slice if the key is absent or the stored value fails to parse
	Get() []LineItem

	// Set overwrites the stored collection
	Set(items []LineItem) error

	// Add merges quantity into an existing line item (preserving its
	// AddedAt and position) or appends a new one with AddedAt=now.
	// Returns the updated collection after persisting it
	Add(itemID int64, quantity int) ([]LineItem, error)

	// Remove deletes the matching entry. Absent ids are a no-op
	Remove(itemID int64) ([]LineItem, error)

	// UpdateQuantity sets the quantity in place. A quantity <= 0
	// collapses to Remove; zero or negative quantities are never stored
	UpdateQuantity(itemID int64, quantity int) ([]LineItem, error)

	// Clear deletes the entire collection
	Clear() error

	// Has reports whether an item with the given id is in the collection
	Has(itemID int64) bool

	// Item returns the line item for the given id if present
	Item(itemID int64) (LineItem, bool)

	// ItemCount returns the raw sum of all quantities. Weighting rules
	// (packs counting as one unit each) are applied by the cart service,
	// not here
	ItemCount() int
}

// BadgeStore persists the scalar pair behind the badge visibility policy
type BadgeStore interface {
	// Badge returns the persisted badge state, zero-valued if absent
	Badge() BadgeState

	// SaveBadge overwrites the persisted badge state
	SaveBadge(state BadgeState) error
}
