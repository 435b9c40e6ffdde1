package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/model"
)

// CredRepository persists CRED token balances. Allowances are session state
// and are not written to disk.
type CredRepository struct {
	pool *pgxpool.Pool
}

// NewCredRepository creates a new CredRepository.
func NewCredRepository(pool *pgxpool.Pool) *CredRepository {
	return &CredRepository{pool: pool}
}

// Load reads all non-zero balances.
func (r *CredRepository) Load(ctx context.Context) (map[model.Address]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT address, balance FROM cred_balances`)
	if err != nil {
		return nil, fmt.Errorf("querying cred balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[model.Address]int64)
	for rows.Next() {
		var addr model.Address
		var bal int64
		if err := rows.Scan(&addr, &bal); err != nil {
			return nil, fmt.Errorf("scanning balance row: %w", err)
		}
		balances[addr] = bal
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating balance rows: %w", err)
	}
	return balances, nil
}

// SaveTx writes all balances (full rewrite).
func (r *CredRepository) SaveTx(ctx context.Context, tx pgx.Tx, balances map[model.Address]int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cred_balances`); err != nil {
		return fmt.Errorf("deleting cred balances: %w", err)
	}
	for addr, bal := range balances {
		if bal == 0 {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO cred_balances (address, balance) VALUES ($1, $2)`,
			addr, bal,
		); err != nil {
			return fmt.Errorf("inserting balance for %s: %w", addr, err)
		}
	}
	return nil
}
