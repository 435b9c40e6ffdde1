// Command gamed runs the Star Seekers game daemon: it owns the in-memory
// world, persists it to PostgreSQL on a timer and saves once more on
// shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/starseekers/internal/config"
	"github.com/udisondev/starseekers/internal/data"
	"github.com/udisondev/starseekers/internal/db"
	"github.com/udisondev/starseekers/internal/game"
	"github.com/udisondev/starseekers/internal/game/pricefeed"
	"github.com/udisondev/starseekers/internal/model"
)

const ConfigPath = "config/gamed.yaml"

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
	cfgPath := ConfigPath
	if p := os.Getenv("STARSEEKERS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("starseekers daemon starting", "log_level", cfg.LogLevel)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	accounts := db.NewAccountRepository(database.Pool())
	admin, err := ensureAccount(ctx, accounts, cfg.AdminLogin, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("ensuring admin account: %w", err)
	}
	// The federation treasury holds funds but nobody logs into it.
	federation, err := ensureAccount(ctx, accounts, cfg.FederationLogin, "")
	if err != nil {
		return fmt.Errorf("ensuring federation account: %w", err)
	}

	feed := pricefeed.NewStatic(cfg.BasePriceCents)
	world := game.NewWorld(game.Options{
		Admin:      admin.Address,
		Federation: federation.Address,
		Feed:       feed,
	})

	persistence := db.NewGamePersistenceService(database.Pool())
	if err := persistence.LoadWorld(ctx, world); err != nil {
		if !errors.Is(err, db.ErrNotBootstrapped) {
			return fmt.Errorf("loading world: %w", err)
		}
		if err := bootstrapWorld(world, cfg); err != nil {
			return fmt.Errorf("bootstrapping world: %w", err)
		}
		if err := persistence.SaveWorld(ctx, world); err != nil {
			return fmt.Errorf("saving bootstrapped world: %w", err)
		}
		slog.Info("fresh world bootstrapped",
			"admin", admin.Address, "federation", federation.Address)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return autosave(gctx, persistence, world, cfg.AutosaveInterval)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// Final save with a fresh context: the run context is already canceled.
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := persistence.SaveWorld(saveCtx, world); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	slog.Info("daemon stopped")
	return nil
}

// ensureAccount creates the account on first boot and returns it. An empty
// password stores a hash no login can ever match.
func ensureAccount(ctx context.Context, repo *db.AccountRepository, login, password string) (*model.Account, error) {
	hash := "*locked*"
	if password != "" {
		var err error
		hash, err = db.HashPassword(password)
		if err != nil {
			return nil, err
		}
	}
	return repo.GetOrCreateAccount(ctx, login, hash)
}

// bootstrapWorld applies config economy parameters and the skill seed to a
// freshly constructed world.
func bootstrapWorld(world *game.World, cfg config.Server) error {
	admin := world.Registry.Admin()
	if cfg.SalesTax != world.Registry.SalesTax() {
		if err := world.Registry.SetSalesTax(admin, cfg.SalesTax); err != nil {
			return fmt.Errorf("setting sales tax: %w", err)
		}
	}
	if cfg.StartingCred != world.Registry.StartingCred() {
		if err := world.Registry.SetStartingCred(admin, cfg.StartingCred); err != nil {
			return fmt.Errorf("setting starting cred: %w", err)
		}
	}

	if cfg.SkillsFile != "" {
		added, err := data.SeedSkills(cfg.SkillsFile, world.Skills, admin)
		if err != nil {
			return fmt.Errorf("seeding skills: %w", err)
		}
		slog.Info("skill catalog seeded", "file", cfg.SkillsFile, "skills", added)
	}
	return nil
}

// autosave persists the world on a timer until ctx is canceled.
func autosave(ctx context.Context, persistence *db.GamePersistenceService, world *game.World, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := persistence.SaveWorld(ctx, world); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
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
