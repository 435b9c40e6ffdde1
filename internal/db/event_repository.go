package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/starseekers/internal/game/event"
)

// EventRepository appends domain events to the append-only events table.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// AppendTx inserts a batch of events.
func (r *EventRepository) AppendTx(ctx context.Context, tx pgx.Tx, events []event.Event) error {
	for _, e := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO events (type, at, fields) VALUES ($1, $2, $3)`,
			e.Type, e.At, e.Fields,
		); err != nil {
			return fmt.Errorf("inserting %s event: %w", e.Type, err)
		}
	}
	return nil
}

// RecentByType returns the newest events of the given type, newest first.
func (r *EventRepository) RecentByType(ctx context.Context, typ string, limit int) ([]event.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, at, fields FROM events WHERE type = $1 ORDER BY id DESC LIMIT $2`,
		typ, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s events: %w", typ, err)
	}
	defer rows.Close()

	events := make([]event.Event, 0, limit)
	for rows.Next() {
		var e event.Event
		if err := rows.Scan(&e.Type, &e.At, &e.Fields); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return events, nil
}
