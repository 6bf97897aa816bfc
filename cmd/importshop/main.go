// importshop is the one-shot shop-item importer. It parses the XML
// sheets of one language (display strings, item attributes, item
// conversions) and upserts them into the database:
//
//	go run ./cmd/importshop eng
//
// All three sheets are collected before the database is touched, so a
// malformed sheet tree aborts the run without writing anything.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/teralab/backoffice/internal/config"
	"github.com/teralab/backoffice/internal/db"
	"github.com/teralab/backoffice/internal/importer"
)

const ConfigPath = "config/backoffice.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if len(os.Args) != 2 {
		return fmt.Errorf("usage: importshop <language>")
	}
	language := os.Args[1]

	cfgPath := ConfigPath
	if p := os.Getenv("BACKOFFICE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadBackoffice(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.Info("collecting shop item sheets", "language", language, "share_root", cfg.ShareRoot)
	ds, err := importer.Collect(cfg.ShareRoot, language)
	if err != nil {
		return fmt.Errorf("collecting datasets: %w", err)
	}
	slog.Info("datasets collected",
		"strings", len(ds.Strings),
		"templates", len(ds.Templates),
		"conversions", len(ds.Conversions),
	)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	imp := importer.New(db.NewShopRepository(database.Pool()), cfg.ImportWorkers)
	report := imp.Run(ctx, ds)

	slog.Info("import finished",
		"strings_failed", report.Strings.Failed,
		"templates_failed", report.Templates.Failed,
		"conversions_failed", report.Conversions.Failed,
	)
	if failed := report.FailedTotal(); failed > 0 {
		return fmt.Errorf("%d of %d upserts failed", failed,
			report.Strings.Total+report.Templates.Total+report.Conversions.Total)
	}
	return nil
}
