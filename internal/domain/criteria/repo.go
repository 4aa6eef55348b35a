package criteria

import (
	"context"

	"github.com/google/uuid"
)

// CriterionRepository persists the local mirror of criteria under review.
type CriterionRepository interface {
	Create(ctx context.Context, c *Criterion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Criterion, error)
	Update(ctx context.Context, c *Criterion) error
	MarkDeleted(ctx context.Context, id uuid.UUID) error
	ListByProtocol(ctx context.Context, protocolID string, limit, offset int) ([]*Criterion, int, error)
	List(ctx context.Context, limit, offset int) ([]*Criterion, int, error)
}
