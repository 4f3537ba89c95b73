package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/skyroute/internal/flightdb"
	"github.com/starford/skyroute/internal/mcpserver"
	"github.com/starford/skyroute/internal/planner"
	"github.com/starford/skyroute/internal/render"
)

// SearchRequest is a one-shot route search from the command line.
// Date and Clock follow planner.ParseDeparture.
type SearchRequest struct {
	From       string
	To         string
	Date       string
	Clock      string
	MaxHops    int
	MinLayover *time.Duration
	JSON       bool
}

// Search loads the dataset, runs one search and writes the result to w.
func Search(ctx context.Context, req SearchRequest, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cat, err := app.newCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	defer cat.Close()

	dep, err := planner.ParseDeparture(req.Date, req.Clock, time.Now(), app.config.Search.Location())
	if err != nil {
		return err
	}
	res, err := app.newPlanner(cat).Search(ctx, planner.Query{
		From:       req.From,
		To:         req.To,
		Departure:  dep,
		MaxHops:    req.MaxHops,
		MinLayover: req.MinLayover,
	})
	if err != nil {
		return err
	}
	if req.JSON {
		return writeIndentedJSON(w, res)
	}
	return render.Result(w, res)
}

// Cities loads the dataset and lists its cities.
func Cities(ctx context.Context, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cat, err := app.newCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	defer cat.Close()

	cities, err := app.newPlanner(cat).Cities()
	if err != nil {
		return err
	}
	return render.Cities(w, cities)
}

// Export writes the flight ticket summary of the SQLite travel database at
// dbPath to a CSV file at outPath, creating parent directories.
func Export(ctx context.Context, dbPath, outPath string, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	n, err := flightdb.Export(ctx, dbPath, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("export done",
		slog.String("db", dbPath),
		slog.String("out", outPath),
		slog.Int("rows", n))
	return nil
}

// ServeMCP loads the dataset and serves the MCP tools on stdin/stdout.
// The dataset is watched for changes when configured.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cat, err := app.newCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	defer cat.Close()

	if app.config.Dataset.Watch {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := cat.Watch(watchCtx, app.config.Dataset.Path); err != nil {
				app.logger.Error("dataset watcher failed", slog.String("error", err.Error()))
			}
		}()
	}

	srv := mcpserver.New(app.newPlanner(cat), app.config.Search.Location())
	return srv.ServeStdio()
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
