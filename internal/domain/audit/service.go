package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo EventRepository
}

func NewService(repo EventRepository) *Service {
	return &Service{repo: repo}
}

// Record appends one event. Actor, action and rationale are mandatory; the
// audit trail is the reason rationales exist at all.
func (s *Service) Record(ctx context.Context, e *Event) error {
	if e.Actor == "" {
		return fmt.Errorf("actor is required")
	}
	if e.Action == "" {
		return fmt.Errorf("action is required")
	}
	if e.Rationale == "" {
		return fmt.Errorf("rationale is required")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListEventsForEntity(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*Event, int, error) {
	return s.repo.ListByEntity(ctx, entityID, limit, offset)
}
