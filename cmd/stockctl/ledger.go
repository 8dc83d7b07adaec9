package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
	"github.com/warp/stock-ledger/config"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/logger"
	"github.com/warp/stock-ledger/store/sqlite"
)

var (
	envFile = flag.String("env", "", "Path to a .env file")
	dbPath  = flag.String("db", "", "SQLite database path (default: DB_PATH)")
	verbose = flag.Bool("v", false, "log engine activity to stderr")
)

// stdout is where commands write their output.
var stdout io.Writer = os.Stdout

// loadConfig reads the environment and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, err
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}
	return cfg, nil
}

// openBook opens the ledger stored in the configured database. The returned
// function closes the database.
func openBook(ctx context.Context, cfg *config.Config) (*inventory.Book, func(), error) {
	if cfg.Storage.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
			return nil, nil, err
		}
	}

	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, err
	}

	log := zerolog.Nop()
	if *verbose {
		log = logger.New(cfg.Log.Level, true)
	}

	book, err := inventory.OpenBook(ctx, store, inventory.WithLogger(log))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return book, func() { store.Close() }, nil
}

// printMarkdown renders md for the terminal, or writes it verbatim when raw.
func printMarkdown(md string, raw bool) {
	if raw {
		fmt.Fprint(stdout, md)
		return
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
