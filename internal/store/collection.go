package store

import (
	"time"

	"github.com/folio-sh/folio/internal/domain"
)

// Collection is one durable LineItem collection (books or packs) scoped
// to a single key inside the cart bucket. It implements
// domain.LineItemStore. Every mutation reads the full collection,
// modifies it, and writes it back synchronously within one call.
type Collection struct {
	store *CartStore
	key   string
}

// now is swapped out in tests
var now = func() int64 { return time.Now().Unix() }

// Get returns the full collection in insertion order. Absent or
// unparsable data degrades to an empty slice.
func (c *Collection) Get() []domain.LineItem {
	var items []domain.LineItem
	c.store.get(bucketCart, c.key, &items)
	return items
}

// Set overwrites the stored collection.
func (c *Collection) Set(items []domain.LineItem) error {
	return c.store.set(bucketCart, c.key, items)
}

// Add merges quantity into an existing line item, preserving its AddedAt
// and position, or appends a new item with AddedAt=now. Quantities below
// one are treated as one. Returns the updated collection after persisting.
func (c *Collection) Add(itemID int64, quantity int) ([]domain.LineItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	items := c.Get()
	merged := false
	for i := range items {
		if items[i].ItemID == itemID {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, domain.LineItem{
			ItemID:   itemID,
			Quantity: quantity,
			AddedAt:  now(),
		})
	}

	if err := c.Set(items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove deletes the matching entry. Removing an absent id is a no-op,
// not an error.
func (c *Collection) Remove(itemID int64) ([]domain.LineItem, error) {
	items := c.Get()
	for i := range items {
		if items[i].ItemID == itemID {
			items = append(items[:i], items[i+1:]...)
			if err := c.Set(items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	return items, nil
}

// UpdateQuantity sets the quantity in place. A quantity <= 0 collapses
// to Remove; zero or negative quantities are never stored.
func (c *Collection) UpdateQuantity(itemID int64, quantity int) ([]domain.LineItem, error) {
	if quantity <= 0 {
		return c.Remove(itemID)
	}

	items := c.Get()
	for i := range items {
		if items[i].ItemID == itemID {
			items[i].Quantity = quantity
			if err := c.Set(items); err != nil {
				return nil, err
			}
			break
		}
	}
	return items, nil
}

// Clear deletes the entire collection key.
func (c *Collection) Clear() error {
	return c.store.delete(bucketCart, c.key)
}

// Has reports whether an item with the given id is in the collection.
func (c *Collection) Has(itemID int64) bool {
	_, ok := c.Item(itemID)
	return ok
}

// Item returns the line item for the given id if present.
func (c *Collection) Item(itemID int64) (domain.LineItem, bool) {
	for _, item := range c.Get() {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

// ItemCount returns the raw sum of all quantities in the collection.
func (c *Collection) ItemCount() int {
	total := 0
	for _, item := range c.Get() {
		total += item.Quantity
	}
	return total
}
