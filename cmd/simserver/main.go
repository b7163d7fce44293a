package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ashmelev/frostline/internal/ai"
	"github.com/ashmelev/frostline/internal/config"
	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/db"
	"github.com/ashmelev/frostline/internal/gateway"
	"github.com/ashmelev/frostline/internal/physics"
	"github.com/ashmelev/frostline/internal/sim"
)

const ConfigPath = "config/simserver.yaml"

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

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("FROSTLINE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("frostline simulation server starting", "log_level", cfg.LogLevel)

	content, err := loadContent(ctx, cfg)
	if err != nil {
		return err
	}
	enemies, abilities, items, zones := content.Counts()
	slog.Info("content loaded",
		"enemies", enemies,
		"abilities", abilities,
		"items", items,
		"zones", zones)

	world := physics.NewHeightmapWorld(nil)
	simulation := sim.New(cfg, world, content)
	gw := gateway.NewServer(simulation, cfg.GatewayBind, cfg.GatewayPort)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := simulation.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("simulation loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := gw.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// loadContent builds the content registry: abilities and items always come
// from the YAML content directory; enemy templates and spawn zones come from
// Postgres when a database is configured.
func loadContent(ctx context.Context, cfg config.SimServer) (*data.Registry, error) {
	content := data.NewRegistry()
	if err := content.LoadDir(cfg.ContentDir); err != nil {
		return nil, fmt.Errorf("loading content dir %s: %w", cfg.ContentDir, err)
	}

	if !cfg.Database.Enabled() {
		return content, nil
	}

	dsn := cfg.Database.DSN()
	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	repo := db.NewContentRepository(database.Pool())
	if err := repo.Populate(ctx, content); err != nil {
		return nil, fmt.Errorf("loading database content: %w", err)
	}

	return content, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
