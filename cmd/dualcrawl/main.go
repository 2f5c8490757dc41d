// Package main is the entry point for dualcrawl.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/dualcrawl/internal/app"
	"github.com/samdwyer/dualcrawl/internal/config"
	"github.com/samdwyer/dualcrawl/internal/gamedata"
	"github.com/samdwyer/dualcrawl/internal/level"
	"github.com/samdwyer/dualcrawl/internal/save"
	"github.com/samdwyer/dualcrawl/internal/spectate"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
	"github.com/samdwyer/dualcrawl/internal/ui"
)

func main() {
	// Load .env and the environment. HONEYCOMB_DUALCRAWL_API_KEY comes from here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up OTEL environment variables from our .env variables
	setupOTelEnv(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			log.Printf("Warning: telemetry setup failed: %v", err)
			log.Printf("Game will run without observability")
		}
		if shutdown != nil {
			defer func() {
				if err := shutdown(context.WithoutCancel(ctx)); err != nil {
					log.Printf("Error shutting down telemetry: %v", err)
				}
			}()
		}
	}

	if err := run(ctx, cfg); err != nil {
		log.Printf("Game error: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := telemetry.NewLogger(logFile, cfg.LogLevel)
	slog.SetDefault(logger)

	var opts []app.Option
	store, err := save.Open(ctx, cfg.SavePath, logger)
	if err != nil {
		log.Printf("Warning: saves disabled: %v", err)
	} else {
		defer store.Close()
		opts = append(opts, app.WithStore(store, cfg.SaveSlot))
	}

	var hub *spectate.Hub
	if cfg.SpectateAddr != "" {
		hub = spectate.NewHub(logger)
		opts = append(opts, app.WithSpectators(hub))
	}

	enemies, err := gamedata.LoadEnemyRegistry()
	if err != nil {
		return fmt.Errorf("load enemies: %w", err)
	}
	items, err := gamedata.LoadItemTable()
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	gameCfg := cfg.Game()
	if gameCfg.Seed == 0 {
		gameCfg.Seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(gameCfg.Seed))
	gen := level.NewProcedural(rng, enemies, items)

	screen, err := ui.NewScreen()
	if err != nil {
		return fmt.Errorf("open screen: %w", err)
	}
	defer screen.Close()

	game := app.New(screen, gameCfg, gen, rng, enemies, logger, opts...)
	if err := game.Start(ctx, cfg.Resume); err != nil {
		return err
	}
	logger.InfoContext(ctx, "game started",
		"session", game.Session().ID.String(),
		"seed", gameCfg.Seed,
		"level", game.Session().LevelNumber(),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// Leaving the game stops the spectator server too.
		defer cancel()
		return game.Run(gctx)
	})

	if hub != nil {
		mux := http.NewServeMux()
		mux.Handle("/spectate", hub)
		srv := &http.Server{Addr: cfg.SpectateAddr, Handler: mux}

		g.Go(func() error {
			logger.InfoContext(gctx, "spectator feed listening", "addr", cfg.SpectateAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("spectator server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.ErrorContext(gctx, "graceful shutdown failed", "error", err)
				return srv.Close()
			}
			return nil
		})
	}

	return g.Wait()
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv(cfg config.Config) {
	// Always set endpoint to Honeycomb
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")

	// Always set headers from our API key - the .env file may have an unexpanded
	// variable reference that doesn't work, so we construct it properly here
	if cfg.HoneycombAPIKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", cfg.HoneycombAPIKey, cfg.HoneycombDataset))
	}
}
