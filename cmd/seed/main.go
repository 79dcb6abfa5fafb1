// Package main provides a CLI tool that loads generated properties into the
// configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/helixir/property-service/internal/config"
	"github.com/helixir/property-service/internal/observability"
	"github.com/helixir/property-service/internal/seed"
	"github.com/helixir/property-service/internal/service"
	"github.com/helixir/property-service/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	count := flag.Int("count", 126, "Number of properties to insert")
	seedValue := flag.Uint64("seed", 1, "Random seed for generated data")
	flag.Parse()

	if *count <= 0 {
		return fmt.Errorf("count must be positive, got %d", *count)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Driver == config.DriverMemory {
		return fmt.Errorf("the memory store does not outlive this process; set store.seed_count instead")
	}
	// Writes go straight to the backend.
	cfg.Cache.Enabled = false

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	logger = logger.With().Str("component", "seed").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	svc := service.NewPropertyService(st.Properties, nil, logger)
	n, err := svc.Seed(ctx, seed.Properties(*count, *seedValue))
	if err != nil {
		return fmt.Errorf("seed properties (inserted %d): %w", n, err)
	}

	logger.Info().
		Int("count", n).
		Str("driver", st.Driver).
		Msg("seeding complete")
	return nil
}
