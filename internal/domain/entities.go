package domain

import (
	"fmt"
	"strings"
)

// StockStatus describes catalog availability
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockOutOfStock StockStatus = "out_of_stock"
	StockPreorder   StockStatus = "preorder"
)

// Book represents a single title in the storefront catalog
type Book struct {
	ID          int64       // Catalog identifier
	Title       string      // Display title
	Slug        string      // URL slug
	Authors     []string    // Author display names
	Description string      // Back-cover synopsis
	Price       float64     // List price
	SalePrice   float64     // Discounted price (0 = not on sale)
	StockStatus StockStatus // Availability
	Pages       int         // Page count
	ISBN        string      // ISBN-13
	Year        int         // Publication year
	Rating      float64     // Average rating (0-5 scale)
	CoverURL    string      // Cover image URL
	Tags        []string    // Tag slugs
}

// OnSale returns true if the book has an active discount
func (b Book) OnSale() bool {
	return b.SalePrice > 0 && b.SalePrice < b.Price
}

// EffectivePrice returns the price the customer actually pays
func (b Book) EffectivePrice() float64 {
	if b.OnSale() {
		return b.SalePrice
	}
	return b.Price
}

// InStock returns true if the book can be ordered
func (b Book) InStock() bool {
	return b.StockStatus == StockInStock || b.StockStatus == StockPreorder
}

// AuthorLine returns the authors joined for display
func (b Book) AuthorLine() string {
	return strings.Join(b.Authors, ", ")
}

// FormattedPrice returns the effective price in a human-readable format
func (b Book) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", b.EffectivePrice())
}

// Pack bundles several books sold together as a single unit
type Pack struct {
	ID          int64       // Catalog identifier
	Title       string      // Display title
	Slug        string      // URL slug
	Description string      // Marketing synopsis
	Price       float64     // List price for the whole pack
	SalePrice   float64     // Discounted price (0 = not on sale)
	StockStatus StockStatus // Availability
	CoverURL    string      // Cover image URL
	BookIDs     []int64     // IDs of the contained books
	Books       []Book      // Contained books (populated on detail lookups only)
}

// OnSale returns true if the pack has an active discount
func (p Pack) OnSale() bool {
	return p.SalePrice > 0 && p.SalePrice < p.Price
}

// EffectivePrice returns the price the customer actually pays
func (p Pack) EffectivePrice() float64 {
	if p.OnSale() {
		return p.SalePrice
	}
	return p.Price
}

// InStock returns true if the pack can be ordered
func (p Pack) InStock() bool {
	return p.StockStatus == StockInStock || p.StockStatus == StockPreorder
}

// Size returns the number of books in the pack
func (p Pack) Size() int {
	return len(p.BookIDs)
}

// FormattedPrice returns the effective price in a human-readable format
func (p Pack) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", p.EffectivePrice())
}

// Tag is a browsable catalog category
type Tag struct {
	ID        int64  // Catalog identifier
	Name      string // Display name
	Slug      string // URL slug
	BookCount int    // Number of books carrying the tag
}
