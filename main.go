package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"cycling-planner/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	configPath := flag.String("config", "", "config file (default ~/.cycling-planner/config.json)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	app := newApp(cfg, logger)
	defer app.Close()

	return app.dispatch(ctx, flag.Args())
}

// loadConfig reads the config file. A missing default config is replaced by
// an example file and the run continues on defaults plus environment.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrNoConfig) && path == "" {
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(os.Stderr, "No config file found. Created an example at:\n  %s/config.json\n\n", configDir)

		def := config.DefaultConfig()
		if err := config.ApplyEnv(&def, nil); err != nil {
			return nil, err
		}
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: cycling-planner [--config FILE] <command> [flags]

Commands:
  import <file.csv>        import a semicolon-separated activity export
  analyze [--from --to]    aggregate a date range (default: all activities)
  weeks [--n] [--months]   per-week (or per-month) load table
  phase [--days]           classify the recent training phase
  status                   current fitness, fatigue and form
  plan generate [flags]    build a periodized template plan
  plan show [--tui]        show the saved plan with actuals
  plan actuals             reconcile the saved plan with imported activities
  plan prompt              print the refinement prompt
  plan refine [--no-tui]   tailor the saved plan with the advisory service
  plan adjust              print a mid-plan adjustment prompt
  export --out DIR         write plan weeks and load history as Parquet
`)
}
