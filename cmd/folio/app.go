package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/folio-sh/folio/internal/auth"
	"github.com/folio-sh/folio/internal/cart"
	"github.com/folio-sh/folio/internal/catalog"
	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/render"
	"github.com/folio-sh/folio/internal/search"
	"github.com/folio-sh/folio/internal/store"
)

// How many catalog pages the search command indexes before matching
const searchIndexPages = 10

// app wires the store, catalog client and cart service behind the CLI
// subcommands. Rendering goes to stdout, diagnostics to the log file.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.CartStore
	catalog *catalog.Client
	cart    *cart.Service
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	st, err := store.Open(config.CartDBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart store: %w", err)
	}

	client := catalog.NewClient(cfg.API.BaseURL, logger)

	if cfg.IsAuthenticated() && cfg.Auth.Issuer != "" && cfg.Auth.ClientID != "" {
		provider := auth.NewClient(cfg.Auth.Issuer, cfg.Auth.ClientID, cfg.RedirectURI(), logger)
		saved := auth.TokenSet{
			AccessToken:  cfg.Auth.AccessToken,
			RefreshToken: cfg.Auth.RefreshToken,
			ExpiresAt:    cfg.Auth.TokenExpiry,
		}
		client.SetTokenSource(auth.NewTokenSource(provider, saved, func(tokens auth.TokenSet) error {
			return config.SaveTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt)
		}, logger))
	}

	hydrator := cart.NewHydrator(client, logger)
	badge := cart.NewBadge(st, logger)
	svc := cart.NewService(st.Books(), st.Packs(), hydrator, badge, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		catalog: client,
		cart:    svc,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) dispatch(args []string) error {
	ctx := context.Background()

	switch args[0] {
	case "browse":
		return a.cmdBrowse(ctx, args[1:])
	case "packs":
		return a.cmdPacks(ctx)
	case "search":
		return a.cmdSearch(ctx, args[1:])
	case "show":
		return a.cmdShow(ctx, args[1:])
	case "pack":
		return a.cmdPack(ctx, args[1:])
	case "tags":
		return a.cmdTags(ctx)
	case "cart":
		return a.cmdCart(ctx, args[1:])
	case "login":
		return a.cmdLogin(ctx)
	case "logout":
		return a.cmdLogout(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// === Catalog commands ===

func (a *app) cmdBrowse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	tag := fs.String("tag", "", "filter by tag slug")
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)

	books, total, err := a.catalog.GetBooks(ctx, *tag, *page, a.cfg.UI.PageSize)
	if err != nil {
		return err
	}
	render.BookList(os.Stdout, books, total)
	return nil
}

func (a *app) cmdPacks(ctx context.Context) error {
	packs, err := a.catalog.GetPacks(ctx)
	if err != nil {
		return err
	}
	render.PackList(os.Stdout, packs)
	return nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: folio search QUERY")
	}
	query := args[0]

	idx := search.NewIndex()
	for page := 1; page <= searchIndexPages; page++ {
		books, total, err := a.catalog.GetBooks(ctx, "", page, a.cfg.UI.PageSize)
		if err != nil {
			return err
		}
		idx.Add(books)
		if idx.Len() >= total || len(books) == 0 {
			break
		}
	}

	results := idx.Search(query, 20)
	a.logger.Debug("search complete", "query", query, "hits", len(results))

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	matched := make([]domain.Book, 0, len(results))
	for _, r := range results {
		matched = append(matched, r.Book)
	}
	render.BookList(os.Stdout, matched, len(matched))
	return nil
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	id, err := parseID(args, "folio show ID")
	if err != nil {
		return err
	}
	book, err := a.catalog.GetBook(ctx, id)
	if err != nil {
		return err
	}
	render.BookDetail(os.Stdout, book)
	if a.cart.InCart(id) {
		fmt.Printf("\nIn cart (x%d)\n", a.cart.BookQuantity(id))
	}
	return nil
}

func (a *app) cmdPack(ctx context.Context, args []string) error {
	id, err := parseID(args, "folio pack ID")
	if err != nil {
		return err
	}
	pack, err := a.catalog.GetPack(ctx, id)
	if err != nil {
		return err
	}
	render.PackDetail(os.Stdout, pack)
	if a.cart.PackInCart(id) {
		fmt.Println("\nIn cart")
	}
	return nil
}

func (a *app) cmdTags(ctx context.Context) error {
	tags, err := a.catalog.GetTags(ctx)
	if err != nil {
		return err
	}
	render.Tags(os.Stdout, tags)
	return nil
}

// === Cart commands ===

func (a *app) cmdCart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.showCart(ctx)
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ExitOnError)
		qty := fs.Int("n", 1, "quantity")
		if len(args) < 2 {
			return fmt.Errorf("usage: folio cart add ID [-n QTY]")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id: %s", args[1])
		}
		fs.Parse(args[2:])
		if err := a.cart.AddBook(id, *qty); err != nil {
			return err
		}
		fmt.Printf("Added book %d (x%d). Cart total: %d items.\n", id, a.cart.BookQuantity(id), a.cart.TotalCount())
		return nil

	case "add-pack":
		id, err := parseID(args[1:], "folio cart add-pack ID")
		if err != nil {
			return err
		}
		if err := a.cart.AddPack(id); err != nil {
			return err
		}
		fmt.Printf("Added pack %d. Cart total: %d items.\n", id, a.cart.TotalCount())
		return nil

	case "rm":
		id, err := parseID(args[1:], "folio cart rm ID")
		if err != nil {
			return err
		}
		if err := a.cart.RemoveBook(id); err != nil {
			return err
		}
		fmt.Printf("Removed book %d. Cart total: %d items.\n", id, a.cart.TotalCount())
		return nil

	case "rm-pack":
		id, err := parseID(args[1:], "folio cart rm-pack ID")
		if err != nil {
			return err
		}
		if err := a.cart.RemovePack(id); err != nil {
			return err
		}
		fmt.Printf("Removed pack %d. Cart total: %d items.\n", id, a.cart.TotalCount())
		return nil

	case "qty":
		if len(args) < 3 {
			return fmt.Errorf("usage: folio cart qty ID QTY")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id: %s", args[1])
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity: %s", args[2])
		}
		if err := a.cart.UpdateBookQuantity(id, qty); err != nil {
			return err
		}
		if qty <= 0 {
			fmt.Printf("Removed book %d.\n", id)
		} else {
			fmt.Printf("Set book %d to x%d.\n", id, qty)
		}
		return nil

	case "clear":
		fs := flag.NewFlagSet("cart clear", flag.ExitOnError)
		packsOnly := fs.Bool("packs", false, "clear only the pack cart")
		fs.Parse(args[1:])
		if *packsOnly {
			if err := a.cart.ClearPackCart(); err != nil {
				return err
			}
			fmt.Println("Pack cart cleared.")
			return nil
		}
		if err := a.cart.ClearCart(); err != nil {
			return err
		}
		fmt.Println("Cart cleared.")
		return nil

	case "dismiss":
		a.cart.DismissBadge()
		fmt.Println("Badge dismissed.")
		return nil

	default:
		return fmt.Errorf("unknown cart command: %s", args[0])
	}
}

func (a *app) showCart(ctx context.Context) error {
	books := a.cart.LoadBooks(ctx)
	packs := a.cart.LoadPacks(ctx)

	if err := a.cart.Err(); err != nil {
		// Hydration failed; the cart itself is intact locally
		render.Error(os.Stderr, err)
	}
	render.Cart(os.Stdout, books, packs, a.cart.BadgeVisible())
	return nil
}

// === Auth commands ===

func (a *app) cmdLogin(ctx context.Context) error {
	if a.cfg.Auth.Issuer == "" || a.cfg.Auth.ClientID == "" {
		return fmt.Errorf("no identity provider configured: set auth.issuer and auth.client_id")
	}

	client := auth.NewClient(a.cfg.Auth.Issuer, a.cfg.Auth.ClientID, a.cfg.RedirectURI(), a.logger)
	flow := auth.NewFlow(client, a.cfg.Auth.RedirectPort, a.cfg.Auth.Scopes, a.logger)

	tokens, err := flow.Run(ctx)
	if err != nil {
		return err
	}
	if err := config.SaveTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return err
	}

	fmt.Println("Signed in.")
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if !a.cfg.IsAuthenticated() {
		fmt.Println("Not signed in.")
		return nil
	}

	if a.cfg.Auth.Issuer != "" && a.cfg.Auth.ClientID != "" {
		client := auth.NewClient(a.cfg.Auth.Issuer, a.cfg.Auth.ClientID, a.cfg.RedirectURI(), a.logger)
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := client.Logout(ctx, a.cfg.Auth.RefreshToken); err != nil {
			// The session is being discarded either way; just record it
			a.logger.Warn("token revocation failed", "error", err)
		}
	}

	if err := config.ClearTokens(); err != nil {
		return err
	}
	fmt.Println("Signed out. Your cart is untouched.")
	return nil
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %s", args[0])
	}
	return id, nil
}
