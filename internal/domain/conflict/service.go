package conflict

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/audit"
)

// AuditRecorder records review actions.
type AuditRecorder interface {
	Record(ctx context.Context, e *audit.Event) error
}

type Service struct {
	repo    ConflictRepository
	auditor AuditRecorder
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo ConflictRepository, auditor AuditRecorder, logger zerolog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger, now: time.Now}
}

func (s *Service) CreateConflict(ctx context.Context, c *Conflict) (*Conflict, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Status = StatusOpen
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetConflict(ctx context.Context, id uuid.UUID) (*Conflict, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListConflicts(ctx context.Context, status string, limit, offset int) ([]*Conflict, int, error) {
	if status != "" && status != StatusOpen && status != StatusResolved {
		return nil, 0, fmt.Errorf("invalid status filter: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

// ResolveRequest picks one candidate as the winner. ChosenIdx nil means
// accept the recommended candidate.
type ResolveRequest struct {
	Actor      string `json:"-"`
	ChosenIdx  *int   `json:"chosen_idx"`
	Rationale  string `json:"rationale"`
	ApplyScope string `json:"apply_scope"`
}

// Resolve closes a conflict in favor of one candidate. The resolution is
// whole-or-nothing: the chosen candidate's mapping wins outright and the
// other is discarded. A rationale is always required.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, req *ResolveRequest) (*Conflict, error) {
	if req.Rationale == "" {
		return nil, fmt.Errorf("rationale is required")
	}
	scope := req.ApplyScope
	if scope == "" {
		scope = ScopeSiteOnly
	}
	if !validScopes[scope] {
		return nil, fmt.Errorf("invalid apply_scope: %s", req.ApplyScope)
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusResolved {
		return nil, fmt.Errorf("conflict %s is already resolved", id)
	}

	idx := c.Recommended()
	if req.ChosenIdx != nil {
		idx = *req.ChosenIdx
	}
	if idx < 0 || idx >= len(c.Candidates) {
		return nil, fmt.Errorf("chosen candidate index %d out of range", idx)
	}

	resolvedAt := s.now()
	c.Status = StatusResolved
	c.ChosenIdx = &idx
	c.Rationale = req.Rationale
	c.ApplyScope = scope
	c.ResolvedBy = req.Actor
	c.ResolvedAt = &resolvedAt
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"term":        c.Term,
		"chosen":      c.Candidates[idx],
		"apply_scope": scope,
	})
	if err := s.auditor.Record(ctx, &audit.Event{
		Actor:      req.Actor,
		Action:     audit.ActionConflictResolve,
		EntityType: "conflict",
		EntityID:   c.ID,
		Rationale:  req.Rationale,
		Detail:     string(detail),
	}); err != nil {
		s.logger.Error().Err(err).Str("conflict_id", id.String()).Msg("Failed to record resolution audit event")
	}
	return c, nil
}
