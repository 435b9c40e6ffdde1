package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/game/clone"
	"github.com/udisondev/starseekers/internal/game/facility"
	"github.com/udisondev/starseekers/internal/model"
)

// CloneRepository persists clone identity (ownership, URIs, the ID sequence)
// together with the facility-owned state: stats, sale flags and the treasury
// counter. Both live in the clones table so a clone is always one row.
type CloneRepository struct {
	pool *pgxpool.Pool
}

// NewCloneRepository creates a new CloneRepository.
func NewCloneRepository(pool *pgxpool.Pool) *CloneRepository {
	return &CloneRepository{pool: pool}
}

// Load reads all clone rows plus the facility singleton.
func (r *CloneRepository) Load(ctx context.Context) (clone.Snapshot, facility.Snapshot, error) {
	cs := clone.Snapshot{
		NextID: 1,
		Owners: make(map[uint64]model.Address),
		URIs:   make(map[uint64]string),
	}
	fs := facility.Snapshot{
		States: make(map[uint64]model.CloneData),
	}

	err := r.pool.QueryRow(ctx,
		`SELECT next_clone_id, treasury_received FROM facility WHERE id = 1`,
	).Scan(&cs.NextID, &fs.TreasuryReceived)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return cs, fs, fmt.Errorf("querying facility: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, owner, uri, intelligence, memory, perception, willpower, charisma, for_sale, price
		 FROM clones ORDER BY id`,
	)
	if err != nil {
		return cs, fs, fmt.Errorf("querying clones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data model.CloneData
		if err := rows.Scan(
			&data.ID, &data.Owner, &data.URI,
			&data.Stats[model.StatIntelligence], &data.Stats[model.StatMemory],
			&data.Stats[model.StatPerception], &data.Stats[model.StatWillpower],
			&data.Stats[model.StatCharisma],
			&data.ForSale, &data.Price,
		); err != nil {
			return cs, fs, fmt.Errorf("scanning clone row: %w", err)
		}
		cs.Owners[data.ID] = data.Owner
		cs.URIs[data.ID] = data.URI
		fs.States[data.ID] = data
	}
	if err := rows.Err(); err != nil {
		return cs, fs, fmt.Errorf("iterating clone rows: %w", err)
	}
	return cs, fs, nil
}

// SaveTx writes all clones (full rewrite) and the facility singleton.
func (r *CloneRepository) SaveTx(ctx context.Context, tx pgx.Tx, cs clone.Snapshot, fs facility.Snapshot) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO facility (id, next_clone_id, treasury_received)
		 VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET next_clone_id = $1, treasury_received = $2`,
		cs.NextID, fs.TreasuryReceived,
	); err != nil {
		return fmt.Errorf("upserting facility: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM clones`); err != nil {
		return fmt.Errorf("deleting clones: %w", err)
	}

	for id, owner := range cs.Owners {
		data := fs.States[id]
		if _, err := tx.Exec(ctx,
			`INSERT INTO clones (id, owner, uri, intelligence, memory, perception, willpower, charisma, for_sale, price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			id, owner, cs.URIs[id],
			data.Stats[model.StatIntelligence], data.Stats[model.StatMemory],
			data.Stats[model.StatPerception], data.Stats[model.StatWillpower],
			data.Stats[model.StatCharisma],
			data.ForSale, data.Price,
		); err != nil {
			return fmt.Errorf("inserting clone %d: %w", id, err)
		}
	}
	return nil
}
