package domain

// LineItem is the persisted record of one cart entry: which product,
// how many, and when it was first added. The book cart and the pack cart
// store independent LineItem collections under separate keys.
type LineItem struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
	AddedAt  int64 `json:"added_at"` // Unix timestamp of first add
}

// CartBook is a LineItem resolved against the catalog. Product fields
// come from the latest catalog fetch; only Quantity and AddedAt are
// sticky client-side values. Never persisted.
type CartBook struct {
	Book
	Quantity int
	AddedAt  int64
}

// Subtotal returns quantity times the effective price
func (c CartBook) Subtotal() float64 {
	return c.EffectivePrice() * float64(c.Quantity)
}

// CartPack is a LineItem resolved against the catalog pack listing
type CartPack struct {
	Pack
	Quantity int
	AddedAt  int64
}

// Subtotal returns quantity times the effective price
func (c CartPack) Subtotal() float64 {
	return c.EffectivePrice() * float64(c.Quantity)
}

// BadgeState backs the floating cart notification across restarts.
// LastKnownCount is the combined item total the user last saw; Dismissed
// records an explicit dismissal that survives reloads until the count
// changes again.
type BadgeState struct {
	LastKnownCount int  `json:"last_known_count"`
	Dismissed      bool `json:"dismissed"`
}
