package conflict

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type conflictRepoPG struct{ pool *pgxpool.Pool }

func NewConflictRepoPG(pool *pgxpool.Pool) ConflictRepository {
	return &conflictRepoPG{pool: pool}
}

const conflictCols = `id, term, candidates, status, chosen_idx, rationale,
	apply_scope, resolved_by, resolved_at, created_at`

func scanConflict(row pgx.Row) (*Conflict, error) {
	var c Conflict
	err := row.Scan(&c.ID, &c.Term, &c.Candidates, &c.Status, &c.ChosenIdx, &c.Rationale,
		&c.ApplyScope, &c.ResolvedBy, &c.ResolvedAt, &c.CreatedAt)
	return &c, err
}

func (r *conflictRepoPG) Create(ctx context.Context, c *Conflict) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mapping_conflicts (id, term, candidates, status)
		VALUES ($1,$2,$3,$4)`,
		c.ID, c.Term, c.Candidates, c.Status)
	return err
}

func (r *conflictRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Conflict, error) {
	return scanConflict(r.pool.QueryRow(ctx,
		`SELECT `+conflictCols+` FROM mapping_conflicts WHERE id = $1`, id))
}

func (r *conflictRepoPG) Update(ctx context.Context, c *Conflict) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mapping_conflicts SET status = $2, chosen_idx = $3, rationale = $4,
			apply_scope = $5, resolved_by = $6, resolved_at = $7
		WHERE id = $1`,
		c.ID, c.Status, c.ChosenIdx, c.Rationale, c.ApplyScope, c.ResolvedBy, c.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update conflict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *conflictRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*Conflict, int, error) {
	where, args := "", []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mapping_conflicts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conflicts: %w", err)
	}

	query := `SELECT ` + conflictCols + ` FROM mapping_conflicts` + where +
		fmt.Sprintf(` ORDER BY created_at LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []*Conflict
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan conflict: %w", err)
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, total, rows.Err()
}
