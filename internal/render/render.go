// Package render writes styled terminal output for catalog and cart
// views. It is intentionally dumb: all state decisions happen in the
// cart service, all data shaping in the domain.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/folio-sh/folio/internal/domain"
)

// BookList writes a browsable book listing.
func BookList(w io.Writer, books []domain.Book, total int) {
	if len(books) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No books found."))
		return
	}

	for _, b := range books {
		line := fmt.Sprintf("%5d  %s", b.ID, titleStyle.Render(b.Title))
		if by := b.AuthorLine(); by != "" {
			line += subtitleStyle.Render("  by " + by)
		}
		line += "  " + price(b.OnSale(), b.FormattedPrice())
		if !b.InStock() {
			line += "  " + errorStyle.Render("out of stock")
		}
		fmt.Fprintln(w, line)
	}

	if total > len(books) {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Showing %d of %d books.", len(books), total)))
	}
}

// BookDetail writes a full book card.
func BookDetail(w io.Writer, b *domain.Book) {
	fmt.Fprintln(w, titleStyle.Render(b.Title))
	if by := b.AuthorLine(); by != "" {
		fmt.Fprintln(w, subtitleStyle.Render("by "+by))
	}
	fmt.Fprintln(w)
	if b.Description != "" {
		fmt.Fprintln(w, b.Description)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Price:  %s\n", price(b.OnSale(), b.FormattedPrice()))
	if b.Year > 0 {
		fmt.Fprintf(w, "Year:   %d\n", b.Year)
	}
	if b.Pages > 0 {
		fmt.Fprintf(w, "Pages:  %d\n", b.Pages)
	}
	if b.ISBN != "" {
		fmt.Fprintf(w, "ISBN:   %s\n", b.ISBN)
	}
	if b.Rating > 0 {
		fmt.Fprintf(w, "Rating: %.1f/5\n", b.Rating)
	}
	if len(b.Tags) > 0 {
		fmt.Fprintf(w, "Tags:   %s\n", dimStyle.Render(strings.Join(b.Tags, ", ")))
	}
}

// PackList writes a pack listing.
func PackList(w io.Writer, packs []domain.Pack) {
	if len(packs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No packs available."))
		return
	}
	for _, p := range packs {
		fmt.Fprintf(w, "%5d  %s%s  %s\n",
			p.ID,
			titleStyle.Render(p.Title),
			subtitleStyle.Render(fmt.Sprintf("  (%d books)", p.Size())),
			price(p.OnSale(), p.FormattedPrice()),
		)
	}
}

// PackDetail writes a full pack card including contained books.
func PackDetail(w io.Writer, p *domain.Pack) {
	fmt.Fprintln(w, titleStyle.Render(p.Title))
	fmt.Fprintln(w, subtitleStyle.Render(fmt.Sprintf("%d books", p.Size())))
	fmt.Fprintln(w)
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Price: %s\n", price(p.OnSale(), p.FormattedPrice()))
	if len(p.Books) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, accentStyle.Render("Included:"))
		for _, b := range p.Books {
			fmt.Fprintf(w, "  %s%s\n", b.Title, subtitleStyle.Render("  by "+b.AuthorLine()))
		}
	}
}

// Cart writes the hydrated cart view with the badge notice line.
func Cart(w io.Writer, books []domain.CartBook, packs []domain.CartPack, badgeVisible bool) {
	if len(books) == 0 && len(packs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("Your cart is empty."))
		return
	}

	if badgeVisible {
		fmt.Fprintln(w, badgeStyle.Render("new items in your cart"))
		fmt.Fprintln(w)
	}

	var total float64

	if len(books) > 0 {
		fmt.Fprintln(w, accentStyle.Render("Books"))
		for _, b := range books {
			fmt.Fprintf(w, "%5d  %-3s %s  %s  %s\n",
				b.ID,
				fmt.Sprintf("x%d", b.Quantity),
				titleStyle.Render(b.Title),
				price(b.OnSale(), fmt.Sprintf("$%.2f", b.Subtotal())),
				dimStyle.Render("added "+addedAgo(b.AddedAt)),
			)
			total += b.Subtotal()
		}
	}

	if len(packs) > 0 {
		fmt.Fprintln(w, accentStyle.Render("Packs"))
		for _, p := range packs {
			fmt.Fprintf(w, "%5d  %-3s %s  %s  %s\n",
				p.ID,
				fmt.Sprintf("x%d", p.Quantity),
				titleStyle.Render(p.Title),
				price(p.OnSale(), fmt.Sprintf("$%.2f", p.Subtotal())),
				dimStyle.Render("added "+addedAgo(p.AddedAt)),
			)
			total += p.Subtotal()
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %s\n", successStyle.Render(fmt.Sprintf("$%.2f", total)))
}

// Tags writes the tag listing.
func Tags(w io.Writer, tags []domain.Tag) {
	for _, t := range tags {
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(t.Slug), dimStyle.Render(fmt.Sprintf("(%d)", t.BookCount)))
	}
}

// Error writes a styled error line.
func Error(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}

func price(onSale bool, formatted string) string {
	if onSale {
		return saleStyle.Render(formatted)
	}
	return formatted
}

func addedAgo(unix int64) string {
	d := time.Since(time.Unix(unix, 0))
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
