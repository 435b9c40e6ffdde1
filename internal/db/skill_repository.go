package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/model"
)

// SkillRepository persists the skill catalog. Removed skills keep their row
// with a blank name so historical training logs stay resolvable.
type SkillRepository struct {
	pool *pgxpool.Pool
}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository(pool *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{pool: pool}
}

// Load reads all skill definitions and the next catalog ID.
func (r *SkillRepository) Load(ctx context.Context) ([]model.Skill, uint32, error) {
	nextID := uint32(1)
	err := r.pool.QueryRow(ctx,
		`SELECT next_skill_id FROM skill_catalog WHERE id = 1`,
	).Scan(&nextID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, fmt.Errorf("querying skill catalog: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, primary_attribute, secondary_attribute, has_dependency, dependency_id, multiplier, icon
		 FROM skills ORDER BY id`,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("querying skills: %w", err)
	}
	defer rows.Close()

	skills := make([]model.Skill, 0, 32)
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(
			&s.ID, &s.Name, &s.PrimaryAttribute, &s.SecondaryAttribute,
			&s.Dependency, &s.DependencyID, &s.Multiplier, &s.Icon,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning skill row: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating skill rows: %w", err)
	}
	return skills, nextID, nil
}

// SaveTx writes the whole catalog (full rewrite).
func (r *SkillRepository) SaveTx(ctx context.Context, tx pgx.Tx, skills []model.Skill, nextID uint32) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO skill_catalog (id, next_skill_id) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET next_skill_id = $1`,
		nextID,
	); err != nil {
		return fmt.Errorf("upserting skill catalog: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM skills`); err != nil {
		return fmt.Errorf("deleting skills: %w", err)
	}
	for _, s := range skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO skills (id, name, primary_attribute, secondary_attribute, has_dependency, dependency_id, multiplier, icon)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.Name, s.PrimaryAttribute, s.SecondaryAttribute,
			s.Dependency, s.DependencyID, s.Multiplier, s.Icon,
		); err != nil {
			return fmt.Errorf("inserting skill %d: %w", s.ID, err)
		}
	}
	return nil
}
