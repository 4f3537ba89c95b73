package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/skyroute/internal"
	pkgconfig "github.com/starford/skyroute/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// The flag wins over the file.
	if path := cmd.String("dataset"); path != "" {
		cfg.Dataset.Path = path
		cfg.Dataset.Format = ""
		if err := cfg.Dataset.Validate(); err != nil {
			return nil, fmt.Errorf("invalid dataset: %w", err)
		}
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req := internal.SearchRequest{
		From:    cmd.String("from"),
		To:      cmd.String("to"),
		Date:    cmd.String("date"),
		Clock:   cmd.String("time"),
		MaxHops: int(cmd.Int("max-hops")),
		JSON:    cmd.Bool("json"),
	}
	if cmd.IsSet("min-layover") {
		d := cmd.Duration("min-layover")
		req.MinLayover = &d
	}
	return internal.Search(ctx, req, os.Stdout,
		internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func runCities(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Cities(ctx, os.Stdout,
		internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	return internal.Export(ctx, cmd.String("db"), cmd.String("out"), logger)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol.
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func main() {
	cmd := &cli.Command{
		Name:   "skyroute",
		Usage:  "Find the cheapest, fastest and least-transfer flight routes between cities",
		Action: runServe,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Usage:   "Path to the flight ticket summary (CSV or SQLite); overrides the config file",
				Sources: cli.EnvVars("APP_DATASET"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: runServe,
			},
			{
				Name:   "search",
				Usage:  "Search routes once and print the best ones",
				Action: runSearch,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "Origin city", Required: true},
					&cli.StringFlag{Name: "to", Usage: "Destination city", Required: true},
					&cli.StringFlag{Name: "date", Usage: "Departure date YYYY-MM-DD", Value: "today"},
					&cli.StringFlag{Name: "time", Usage: "Earliest departure time HH:MM (default: now for today, midnight otherwise)"},
					&cli.IntFlag{Name: "max-hops", Usage: "Maximum flights per route (default from config)"},
					&cli.DurationFlag{Name: "min-layover", Usage: "Minimum connection time, e.g. 45m (default from config)"},
					&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON"},
				},
			},
			{
				Name:   "cities",
				Usage:  "List cities and their airports",
				Action: runCities,
			},
			{
				Name:   "export",
				Usage:  "Export the flight ticket summary of a SQLite travel database to CSV",
				Action: runExport,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Usage: "Path to the SQLite travel database", Required: true},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output CSV path",
						Value: "data/processed/flight_ticket_summary.csv",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve route search tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
