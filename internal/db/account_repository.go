package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/model"
)

// AccountRepository manages player accounts.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetAccount retrieves an account by login.
// Returns nil, nil if the account does not exist.
func (r *AccountRepository) GetAccount(ctx context.Context, login string) (*model.Account, error) {
	login = strings.ToLower(login)
	var acc model.Account
	err := r.pool.QueryRow(ctx,
		`SELECT login, password, address, access_level, created_at, last_active
		 FROM accounts WHERE login = $1`, login,
	).Scan(&acc.Login, &acc.PasswordHash, &acc.Address, &acc.AccessLevel, &acc.CreatedAt, &acc.LastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account %q: %w", login, err)
	}
	return &acc, nil
}

// GetOrCreateAccount atomically fetches an existing account or creates a new
// one with a derived on-chain address. INSERT ... ON CONFLICT DO NOTHING
// keeps concurrent first logins from racing each other.
func (r *AccountRepository) GetOrCreateAccount(ctx context.Context, login, passwordHash string) (*model.Account, error) {
	login = strings.ToLower(login)
	address := model.DeriveAddress("account/" + login)

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (login, password, address, access_level, created_at, last_active)
		 VALUES ($1, $2, $3, 0, $4, $4)
		 ON CONFLICT (login) DO NOTHING`,
		login, passwordHash, address, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting account %q: %w", login, err)
	}
	if tag.RowsAffected() > 0 {
		slog.Info("auto-created account", "login", login, "address", address)
	}

	acc, err := r.GetAccount(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("getting account after insert %q: %w", login, err)
	}
	if acc == nil {
		return nil, fmt.Errorf("account %q not found after insert", login)
	}
	return acc, nil
}

// UpdateLastActive bumps last_active on successful login.
func (r *AccountRepository) UpdateLastActive(ctx context.Context, login string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET last_active = $1 WHERE login = $2`,
		time.Now(), strings.ToLower(login),
	)
	if err != nil {
		return fmt.Errorf("updating last active for %q: %w", login, err)
	}
	return nil
}

// SetAccessLevel changes the account's access level. Level 100 and above
// grants operator commands.
func (r *AccountRepository) SetAccessLevel(ctx context.Context, login string, level int32) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET access_level = $1 WHERE login = $2`,
		level, strings.ToLower(login),
	)
	if err != nil {
		return fmt.Errorf("updating access level for %q: %w", login, err)
	}
	return nil
}
