package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/game/registry"
	"github.com/udisondev/starseekers/internal/model"
)

// ErrNotBootstrapped is returned when the registry singleton row is missing,
// meaning the world has never been saved.
var ErrNotBootstrapped = errors.New("world not bootstrapped")

// RegistryRepository persists the access registry: admin and federation
// addresses, economic parameters and the contract address book.
type RegistryRepository struct {
	pool *pgxpool.Pool
}

// NewRegistryRepository creates a new RegistryRepository.
func NewRegistryRepository(pool *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

// Load reads the registry snapshot. Returns ErrNotBootstrapped when no
// singleton row exists yet.
func (r *RegistryRepository) Load(ctx context.Context) (registry.Snapshot, error) {
	var s registry.Snapshot
	err := r.pool.QueryRow(ctx,
		`SELECT admin, federation, maintenance, sales_tax, starting_cred
		 FROM registry WHERE id = 1`,
	).Scan(&s.Admin, &s.Federation, &s.Maintenance, &s.SalesTax, &s.StartingCred)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, ErrNotBootstrapped
		}
		return s, fmt.Errorf("querying registry: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT name, address FROM registry_contracts`)
	if err != nil {
		return s, fmt.Errorf("querying registry contracts: %w", err)
	}
	defer rows.Close()

	s.Contracts = make(map[string]model.Address)
	for rows.Next() {
		var name string
		var addr model.Address
		if err := rows.Scan(&name, &addr); err != nil {
			return s, fmt.Errorf("scanning contract row: %w", err)
		}
		s.Contracts[name] = addr
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("iterating contract rows: %w", err)
	}
	return s, nil
}

// SaveTx writes the registry snapshot (full rewrite of the contract book).
func (r *RegistryRepository) SaveTx(ctx context.Context, tx pgx.Tx, s registry.Snapshot) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO registry (id, admin, federation, maintenance, sales_tax, starting_cred)
		 VALUES (1, $1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   admin = $1, federation = $2, maintenance = $3, sales_tax = $4, starting_cred = $5`,
		s.Admin, s.Federation, s.Maintenance, s.SalesTax, s.StartingCred,
	); err != nil {
		return fmt.Errorf("upserting registry: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM registry_contracts`); err != nil {
		return fmt.Errorf("deleting registry contracts: %w", err)
	}
	for name, addr := range s.Contracts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO registry_contracts (name, address) VALUES ($1, $2)`,
			name, addr,
		); err != nil {
			return fmt.Errorf("inserting contract %q: %w", name, err)
		}
	}
	return nil
}
