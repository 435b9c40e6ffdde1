package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/game"
)

// GamePersistenceService saves and loads the whole world state. A save is a
// single transaction across all aggregates so a crash mid-save never leaves
// the database half-written.
type GamePersistenceService struct {
	pool         *pgxpool.Pool
	registryRepo *RegistryRepository
	cloneRepo    *CloneRepository
	skillRepo    *SkillRepository
	learningRepo *LearningRepository
	credRepo     *CredRepository
	eventRepo    *EventRepository
}

// NewGamePersistenceService creates a persistence service over the pool.
func NewGamePersistenceService(pool *pgxpool.Pool) *GamePersistenceService {
	return &GamePersistenceService{
		pool:         pool,
		registryRepo: NewRegistryRepository(pool),
		cloneRepo:    NewCloneRepository(pool),
		skillRepo:    NewSkillRepository(pool),
		learningRepo: NewLearningRepository(pool),
		credRepo:     NewCredRepository(pool),
		eventRepo:    NewEventRepository(pool),
	}
}

// Events exposes the event repository for read queries.
func (s *GamePersistenceService) Events() *EventRepository {
	return s.eventRepo
}

// SaveWorld writes every aggregate and drains the event journal into the
// events table, all in one transaction. On failure the drained events are
// lost from the journal but the database stays consistent.
func (s *GamePersistenceService) SaveWorld(ctx context.Context, w *game.World) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin world save: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("world save rollback failed", "error", err)
		}
	}()

	if err := s.registryRepo.SaveTx(ctx, tx, w.Registry.Snapshot()); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	if err := s.cloneRepo.SaveTx(ctx, tx, w.Clones.Snapshot(), w.Facility.Snapshot()); err != nil {
		return fmt.Errorf("saving clones: %w", err)
	}
	skills, nextID := w.Skills.Snapshot()
	if err := s.skillRepo.SaveTx(ctx, tx, skills, nextID); err != nil {
		return fmt.Errorf("saving skills: %w", err)
	}
	if err := s.learningRepo.SaveTx(ctx, tx, w.Learning.Snapshot()); err != nil {
		return fmt.Errorf("saving learning state: %w", err)
	}
	if err := s.credRepo.SaveTx(ctx, tx, w.Cred.Balances()); err != nil {
		return fmt.Errorf("saving cred balances: %w", err)
	}

	events := w.Journal.Drain()
	if err := s.eventRepo.AppendTx(ctx, tx, events); err != nil {
		return fmt.Errorf("saving events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit world save: %w", err)
	}

	slog.Info("world saved",
		"clones", w.Clones.Count(),
		"skills", w.Skills.Count(),
		"events", len(events))
	return nil
}

// LoadWorld restores every aggregate from the database into w.
// Returns ErrNotBootstrapped for a fresh database; the caller keeps the
// newly constructed world in that case.
func (s *GamePersistenceService) LoadWorld(ctx context.Context, w *game.World) error {
	regSnap, err := s.registryRepo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotBootstrapped) {
			return err
		}
		return fmt.Errorf("loading registry: %w", err)
	}

	cloneSnap, facSnap, err := s.cloneRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading clones: %w", err)
	}
	skills, nextSkillID, err := s.skillRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading skills: %w", err)
	}
	learnSnap, err := s.learningRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading learning state: %w", err)
	}
	balances, err := s.credRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading cred balances: %w", err)
	}

	w.Registry.Restore(regSnap)
	w.Clones.Restore(cloneSnap)
	w.Facility.Restore(facSnap)
	w.Skills.Restore(skills, nextSkillID)
	w.Learning.Restore(learnSnap)
	w.Cred.RestoreBalances(balances)

	slog.Info("world loaded",
		"clones", w.Clones.Count(),
		"skills", w.Skills.Count(),
		"training", len(learnSnap.States))
	return nil
}
