package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type eventRepoPG struct{ pool *pgxpool.Pool }

func NewEventRepoPG(pool *pgxpool.Pool) EventRepository {
	return &eventRepoPG{pool: pool}
}

const eventCols = `id, actor, action, entity_type, entity_id, rationale, detail, recorded`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityType, &e.EntityID, &e.Rationale, &e.Detail, &e.Recorded)
	return &e, err
}

func (r *eventRepoPG) Create(ctx context.Context, e *Event) error {
	e.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO review_events (id, actor, action, entity_type, entity_id, rationale, detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.Actor, e.Action, e.EntityType, e.EntityID, e.Rationale, e.Detail)
	return err
}

func (r *eventRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventCols+` FROM review_events WHERE id = $1`, id))
}

func (r *eventRepoPG) ListByEntity(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*Event, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM review_events WHERE entity_id = $1`, entityID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+eventCols+` FROM review_events
		WHERE entity_id = $1 ORDER BY recorded DESC LIMIT $2 OFFSET $3`, entityID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows, total)
}

func (r *eventRepoPG) List(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM review_events`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+eventCols+` FROM review_events
		ORDER BY recorded DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows, total)
}

func collectEvents(rows pgx.Rows, total int) ([]*Event, int, error) {
	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events: %w", err)
	}
	return events, total, nil
}
