package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/screamdb/etl-core/internal/checkpoint"
	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "pipeline",
		Usage: "Multi-source film ingestion pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Execute the full ingestion run",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-items",
						Usage: "Limit each source to N items (0 = no limit)",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Limit paginated sources to N pages (0 = no limit)",
					},
					&cli.StringFlag{
						Name:  "resume-from",
						Usage: "Resume from a step, by name or 1-based position; earlier steps load from checkpoint",
					},
					&cli.StringSliceFlag{
						Name:  "skip",
						Usage: "Skip a source step (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "export",
						Usage: "Export the canonical dataset as parquet after the run",
					},
				},
			},
			{
				Name:   "list-checkpoints",
				Usage:  "List checkpoints with their timestamps",
				Action: listCheckpointsCommand,
			},
			{
				Name:   "extract",
				Usage:  "Run a single source extraction standalone",
				Action: extractCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source step to run",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-items",
						Usage: "Limit the source to N items (0 = no limit)",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Limit the source to N pages (0 = no limit)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	skip := c.StringSlice("skip")
	if err := cfg.Validate(skip); err != nil {
		return err
	}

	store, err := checkpoint.NewStore(cfg.CheckpointDir, slog.Default())
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, store, nil, slog.Default())
	rep, err := p.Run(ctx, pipeline.Options{
		MaxItems:   c.Int("max-items"),
		MaxPages:   c.Int("max-pages"),
		ResumeFrom: c.String("resume-from"),
		Skip:       skip,
		Export:     c.Bool("export"),
	})
	if rep != nil {
		printJSON(rep)
	}
	return err
}

func listCheckpointsCommand(c *cli.Context) error {
	cfg := config.Load()
	store, err := checkpoint.NewStore(cfg.CheckpointDir, slog.Default())
	if err != nil {
		return err
	}
	names, err := store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no checkpoints")
		return nil
	}
	for _, name := range names {
		if ts, ok := store.Timestamp(name); ok {
			fmt.Printf("%-40s %s\n", name, ts.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Printf("%-40s (unreadable)\n", name)
		}
	}
	return nil
}

func extractCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	source := c.String("source")

	store, err := checkpoint.NewStore(cfg.CheckpointDir, slog.Default())
	if err != nil {
		return err
	}
	p := pipeline.New(cfg, store, nil, slog.Default())

	// Validate only the requested source's credentials.
	var skip []string
	for _, name := range p.SourceNames() {
		if name != source {
			skip = append(skip, name)
		}
	}
	if err := cfg.Validate(skip); err != nil {
		return err
	}

	res, err := p.RunSource(ctx, source, pipeline.Options{
		MaxItems: c.Int("max-items"),
		MaxPages: c.Int("max-pages"),
	})
	if err != nil {
		return err
	}
	printJSON(res)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("encode output", "error", err)
		return
	}
	fmt.Println(string(out))
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
