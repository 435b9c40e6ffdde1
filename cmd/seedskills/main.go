// Command seedskills loads a YAML skill seed into an existing world.
// Skills already in the catalog are reported and skipped. Run it while the
// daemon is stopped; it writes the world back in one transaction.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/starseekers/internal/config"
	"github.com/udisondev/starseekers/internal/data"
	"github.com/udisondev/starseekers/internal/db"
	"github.com/udisondev/starseekers/internal/game"
	"github.com/udisondev/starseekers/internal/game/pricefeed"
)

func main() {
	cfgPath := flag.String("config", "config/gamed.yaml", "path to daemon config")
	seedPath := flag.String("seed", "", "path to the YAML skill seed (default: skills_file from config)")
	flag.Parse()

	if err := run(context.Background(), *cfgPath, *seedPath); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, seedPath string) error {
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if seedPath == "" {
		seedPath = cfg.SkillsFile
	}
	if seedPath == "" {
		return fmt.Errorf("no seed file: pass -seed or set skills_file in config")
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	world := game.NewWorld(game.Options{
		Feed: pricefeed.NewStatic(cfg.BasePriceCents),
	})
	persistence := db.NewGamePersistenceService(database.Pool())
	if err := persistence.LoadWorld(ctx, world); err != nil {
		return fmt.Errorf("loading world: %w", err)
	}

	before := world.Skills.Count()
	added, err := data.SeedSkills(seedPath, world.Skills, world.Registry.Admin())
	if err != nil {
		return fmt.Errorf("seeding skills: %w", err)
	}

	if err := persistence.SaveWorld(ctx, world); err != nil {
		return fmt.Errorf("saving world: %w", err)
	}
	slog.Info("skill seed applied", "file", seedPath, "added", added, "total", before+added)
	return nil
}
