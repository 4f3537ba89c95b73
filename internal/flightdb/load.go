package flightdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dataset formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// DetectFormat guesses the format from the file extension, defaulting to CSV.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// ReadRecords reads raw summary rows from path in the given format.
// An empty format is detected from the extension.
func ReadRecords(ctx context.Context, path, format string) ([]Record, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	switch format {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("flightdb: open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	case FormatSQLite:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("flightdb: stat %s: %w", path, err)
		}
		db, err := Open(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Summary(ctx)
	default:
		return nil, fmt.Errorf("flightdb: unknown format %q", format)
	}
}

// Load reads and normalizes the dataset at path.
func Load(ctx context.Context, path, format string, loc *time.Location, logger *slog.Logger) (*Dataset, error) {
	start := time.Now()
	rows, err := ReadRecords(ctx, path, format)
	if err != nil {
		return nil, err
	}
	ds := Normalize(rows, loc, logger)
	if logger != nil {
		logger.Info("flightdb: dataset loaded",
			slog.String("path", path),
			slog.Int("rows", len(rows)),
			slog.Int("flights", len(ds.Flights)),
			slog.Int("cities", len(ds.Cities)),
			slog.Int("dropped", ds.Dropped),
			slog.Duration("took", time.Since(start)))
	}
	return ds, nil
}

// Export writes the summary of a SQLite travel database as CSV.
func Export(ctx context.Context, dbPath string, w io.Writer) (int, error) {
	rows, err := ReadRecords(ctx, dbPath, FormatSQLite)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
