package criteria

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/mapping"
)

type criterionRepoPG struct{ pool *pgxpool.Pool }

func NewCriterionRepoPG(pool *pgxpool.Pool) CriterionRepository {
	return &criterionRepoPG{pool: pool}
}

const criterionCols = `id, protocol_id, type, text, status, confidence,
	source_text, source_document_id, snomed_codes, deleted, created_at, updated_at`

const fieldMappingCols = `target_field, relation, target_value, target_value_min,
	target_value_max, target_value_unit, is_new_field, is_new_value, source_text`

func scanCriterion(row pgx.Row) (*Criterion, error) {
	var c Criterion
	err := row.Scan(&c.ID, &c.ProtocolID, &c.Type, &c.Text, &c.Status, &c.Confidence,
		&c.SourceText, &c.SourceDocumentID, &c.SnomedCodes, &c.Deleted, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *criterionRepoPG) Create(ctx context.Context, c *Criterion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO criteria (id, protocol_id, type, text, status, confidence,
			source_text, source_document_id, snomed_codes, deleted)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.ProtocolID, c.Type, c.Text, c.Status, c.Confidence,
		c.SourceText, c.SourceDocumentID, c.SnomedCodes, c.Deleted)
	if err != nil {
		return fmt.Errorf("insert criterion: %w", err)
	}

	if err := replaceMappings(ctx, tx, c.ID, c.FieldMappings); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *criterionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Criterion, error) {
	c, err := scanCriterion(r.pool.QueryRow(ctx,
		`SELECT `+criterionCols+` FROM criteria WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	c.FieldMappings, err = r.loadMappings(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *criterionRepoPG) Update(ctx context.Context, c *Criterion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE criteria SET type = $2, text = $3, status = $4, confidence = $5,
			source_text = $6, snomed_codes = $7, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE`,
		c.ID, c.Type, c.Text, c.Status, c.Confidence, c.SourceText, c.SnomedCodes)
	if err != nil {
		return fmt.Errorf("update criterion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := replaceMappings(ctx, tx, c.ID, c.FieldMappings); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *criterionRepoPG) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE criteria SET deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *criterionRepoPG) ListByProtocol(ctx context.Context, protocolID string, limit, offset int) ([]*Criterion, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM criteria WHERE protocol_id = $1 AND deleted = FALSE`,
		protocolID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count criteria: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+criterionCols+` FROM criteria
		WHERE protocol_id = $1 AND deleted = FALSE
		ORDER BY created_at LIMIT $2 OFFSET $3`, protocolID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query criteria: %w", err)
	}
	defer rows.Close()

	return r.collectCriteria(ctx, rows, total)
}

func (r *criterionRepoPG) List(ctx context.Context, limit, offset int) ([]*Criterion, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM criteria WHERE deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count criteria: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+criterionCols+` FROM criteria
		WHERE deleted = FALSE ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query criteria: %w", err)
	}
	defer rows.Close()

	return r.collectCriteria(ctx, rows, total)
}

func (r *criterionRepoPG) collectCriteria(ctx context.Context, rows pgx.Rows, total int) ([]*Criterion, int, error) {
	var criteria []*Criterion
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan criterion: %w", err)
		}
		criteria = append(criteria, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, c := range criteria {
		var err error
		if c.FieldMappings, err = r.loadMappings(ctx, c.ID); err != nil {
			return nil, 0, err
		}
	}
	return criteria, total, nil
}

func (r *criterionRepoPG) loadMappings(ctx context.Context, criterionID uuid.UUID) ([]mapping.FieldMapping, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+fieldMappingCols+` FROM criterion_mappings
		WHERE criterion_id = $1 ORDER BY position`, criterionID)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	var mappings []mapping.FieldMapping
	for rows.Next() {
		var m mapping.FieldMapping
		if err := rows.Scan(&m.TargetField, &m.Relation, &m.TargetValue, &m.TargetValueMin,
			&m.TargetValueMax, &m.TargetValueUnit, &m.IsNewField, &m.IsNewValue, &m.SourceText); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// replaceMappings rewrites the mapping rows for a criterion. Mappings are
// replaced wholesale, never patched in place.
func replaceMappings(ctx context.Context, tx pgx.Tx, criterionID uuid.UUID, mappings []mapping.FieldMapping) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM criterion_mappings WHERE criterion_id = $1`, criterionID); err != nil {
		return fmt.Errorf("clear mappings: %w", err)
	}
	for i, m := range mappings {
		_, err := tx.Exec(ctx, `
			INSERT INTO criterion_mappings (criterion_id, position, target_field, relation,
				target_value, target_value_min, target_value_max, target_value_unit,
				is_new_field, is_new_value, source_text)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			criterionID, i, m.TargetField, m.Relation, m.TargetValue, m.TargetValueMin,
			m.TargetValueMax, m.TargetValueUnit, m.IsNewField, m.IsNewValue, m.SourceText)
		if err != nil {
			return fmt.Errorf("insert mapping: %w", err)
		}
	}
	return nil
}
