package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/log"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `folio - terminal client for your bookstore

Usage:
  folio browse [--tag SLUG] [--page N]   list books
  folio packs                            list book packs
  folio search QUERY                     fuzzy-search the catalog
  folio show ID                          book details
  folio pack ID                          pack details
  folio tags                             list tags
  folio cart                             show the cart
  folio cart add ID [-n QTY]             add a book
  folio cart add-pack ID                 add a pack
  folio cart rm ID | rm-pack ID          remove an item
  folio cart qty ID QTY                  change a book quantity
  folio cart clear [--packs]             clear the cart
  folio cart dismiss                     dismiss the cart badge
  folio login | logout                   manage the signed-in session
`

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if showVersion {
		fmt.Printf("folio %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Local .env overrides are convenient for development; absence is fine
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting folio", "version", Version)

	if !cfg.IsConfigured() {
		return fmt.Errorf("no storefront configured: set api.base_url in the config file or FOLIO_API_BASE_URL")
	}

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return nil
	}

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.dispatch(args)
}
