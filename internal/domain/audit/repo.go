package audit

import (
	"context"

	"github.com/google/uuid"
)

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListByEntity(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*Event, int, error)
	List(ctx context.Context, limit, offset int) ([]*Event, int, error)
}
