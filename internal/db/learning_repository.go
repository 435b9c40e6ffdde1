package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/game/learning"
	"github.com/udisondev/starseekers/internal/model"
)

// LearningRepository persists training sessions and per-skill progress logs.
// A learning_state row exists only while a clone is actively training.
type LearningRepository struct {
	pool *pgxpool.Pool
}

// NewLearningRepository creates a new LearningRepository.
func NewLearningRepository(pool *pgxpool.Pool) *LearningRepository {
	return &LearningRepository{pool: pool}
}

// Load reads all active sessions and all progress logs.
func (r *LearningRepository) Load(ctx context.Context) (learning.Snapshot, error) {
	s := learning.Snapshot{
		States: make(map[uint64]model.LearningState),
		Logs:   make(map[uint64]map[uint32]model.LearningLog),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT clone_id, skill_id, start_time, end_time FROM learning_state`,
	)
	if err != nil {
		return s, fmt.Errorf("querying learning state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cloneID uint64
		st := model.LearningState{IsLearning: true}
		if err := rows.Scan(&cloneID, &st.Learning, &st.StartTime, &st.EndTime); err != nil {
			return s, fmt.Errorf("scanning learning state row: %w", err)
		}
		s.States[cloneID] = st
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("iterating learning state rows: %w", err)
	}

	logRows, err := r.pool.Query(ctx,
		`SELECT clone_id, skill_id, skill_level, learning_points FROM learning_log`,
	)
	if err != nil {
		return s, fmt.Errorf("querying learning log: %w", err)
	}
	defer logRows.Close()

	for logRows.Next() {
		var cloneID uint64
		var skillID uint32
		var entry model.LearningLog
		if err := logRows.Scan(&cloneID, &skillID, &entry.SkillLevel, &entry.LearningPoints); err != nil {
			return s, fmt.Errorf("scanning learning log row: %w", err)
		}
		if s.Logs[cloneID] == nil {
			s.Logs[cloneID] = make(map[uint32]model.LearningLog)
		}
		s.Logs[cloneID][skillID] = entry
	}
	if err := logRows.Err(); err != nil {
		return s, fmt.Errorf("iterating learning log rows: %w", err)
	}
	return s, nil
}

// SaveTx writes all training state (full rewrite).
func (r *LearningRepository) SaveTx(ctx context.Context, tx pgx.Tx, s learning.Snapshot) error {
	if _, err := tx.Exec(ctx, `DELETE FROM learning_state`); err != nil {
		return fmt.Errorf("deleting learning state: %w", err)
	}
	for cloneID, st := range s.States {
		if !st.IsLearning {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO learning_state (clone_id, skill_id, start_time, end_time)
			 VALUES ($1, $2, $3, $4)`,
			cloneID, st.Learning, st.StartTime, st.EndTime,
		); err != nil {
			return fmt.Errorf("inserting learning state for clone %d: %w", cloneID, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM learning_log`); err != nil {
		return fmt.Errorf("deleting learning log: %w", err)
	}
	for cloneID, logs := range s.Logs {
		for skillID, entry := range logs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO learning_log (clone_id, skill_id, skill_level, learning_points)
				 VALUES ($1, $2, $3, $4)`,
				cloneID, skillID, entry.SkillLevel, entry.LearningPoints,
			); err != nil {
				return fmt.Errorf("inserting learning log for clone %d skill %d: %w", cloneID, skillID, err)
			}
		}
	}
	return nil
}
