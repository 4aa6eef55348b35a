package conflict

import (
	"context"

	"github.com/google/uuid"
)

// ConflictRepository persists mapping conflicts and their resolutions.
type ConflictRepository interface {
	Create(ctx context.Context, c *Conflict) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conflict, error)
	Update(ctx context.Context, c *Conflict) error
	List(ctx context.Context, status string, limit, offset int) ([]*Conflict, int, error)
}
