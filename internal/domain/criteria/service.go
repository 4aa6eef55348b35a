package criteria

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/audit"
	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/mapping"
	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/platform/extract"
)

// PlanSubmitter pushes an intent list to the extraction backend.
type PlanSubmitter interface {
	Submit(ctx context.Context, ops []mapping.Operation) ([]mapping.OperationResult, error)
}

// Grounder wraps the extraction backend's advisory endpoints.
type Grounder interface {
	Ground(ctx context.Context, criterionID string) ([]extract.GroundingCandidate, error)
	SuggestFields(ctx context.Context, text string) ([]extract.FieldSuggestion, error)
	EditMapping(ctx context.Context, criterionID string, req extract.EditMappingRequest) error
}

// AuditRecorder records review actions.
type AuditRecorder interface {
	Record(ctx context.Context, e *audit.Event) error
}

type Service struct {
	repo      CriterionRepository
	submitter PlanSubmitter
	grounder  Grounder
	auditor   AuditRecorder
	logger    zerolog.Logger
}

func NewService(repo CriterionRepository, submitter PlanSubmitter, grounder Grounder, auditor AuditRecorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		submitter: submitter,
		grounder:  grounder,
		auditor:   auditor,
		logger:    logger,
	}
}

// EditRequest carries a full edited criterion plus the reviewer's rationale.
// The edited state replaces the stored one; the service derives the upstream
// operations by diffing against the snapshot taken at load time.
type EditRequest struct {
	Actor         string                 `json:"-"`
	Rationale     string                 `json:"rationale"`
	Type          string                 `json:"type"`
	Text          string                 `json:"text"`
	SourceText    string                 `json:"source_text"`
	SnomedCodes   []string               `json:"snomed_codes"`
	FieldMappings []mapping.FieldMapping `json:"field_mappings"`
}

// EditResult reports what was applied. PartialFailure is set when the local
// save succeeded but one or more upstream feedback operations failed after
// retries; callers should re-fetch to see the authoritative state.
type EditResult struct {
	Criterion      *Criterion                `json:"criterion"`
	Operations     []mapping.OperationResult `json:"operations,omitempty"`
	PartialFailure bool                      `json:"partial_failure"`
}

// EditCriterion applies a reviewed edit. The save is gated locally: an empty
// rationale or a criterion with no valid field mapping is rejected before any
// persistence or upstream call happens.
func (s *Service) EditCriterion(ctx context.Context, id uuid.UUID, req *EditRequest) (*EditResult, error) {
	if req.Rationale == "" {
		return nil, fmt.Errorf("rationale is required")
	}
	if len(req.FieldMappings) == 0 {
		return nil, fmt.Errorf("at least one field mapping is required")
	}
	if !validTypes[req.Type] {
		return nil, fmt.Errorf("invalid type: %s", req.Type)
	}
	if req.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	for i := range req.FieldMappings {
		req.FieldMappings[i].Normalize()
		if err := req.FieldMappings[i].Validate(); err != nil {
			return nil, fmt.Errorf("field mapping %d: %w", i, err)
		}
	}

	original, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Deleted {
		return nil, fmt.Errorf("criterion %s is deleted", id)
	}

	codeDiff := mapping.DiffCodes(original.SnomedCodes, req.SnomedCodes)
	ops := mapping.PlanEdit(id, codeDiff, original.FieldMappings, req.FieldMappings)

	updated := *original
	updated.Type = req.Type
	updated.Text = req.Text
	if req.SourceText != "" {
		updated.SourceText = req.SourceText
	}
	updated.SnomedCodes = req.SnomedCodes
	updated.FieldMappings = req.FieldMappings
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if err := s.recordAudit(ctx, audit.ActionCriterionEdit, id, req.Actor, req.Rationale, ops); err != nil {
		s.logger.Error().Err(err).Str("criterion_id", id.String()).Msg("Failed to record edit audit event")
	}

	result := &EditResult{Criterion: &updated}
	if len(ops) > 0 {
		results, subErr := s.submitter.Submit(ctx, ops)
		result.Operations = results
		if subErr != nil {
			result.PartialFailure = true
			s.logger.Warn().Err(subErr).Str("criterion_id", id.String()).
				Msg("Edit saved locally but upstream feedback partially failed")
		}
	}
	return result, nil
}

// DeleteRequest carries the rationale for a logical delete.
type DeleteRequest struct {
	Actor     string `json:"-"`
	Rationale string `json:"rationale"`
}

// DeleteCriterion marks a criterion deleted. A rationale is required; the
// delete rationale is recorded independently of any edit rationale.
func (s *Service) DeleteCriterion(ctx context.Context, id uuid.UUID, req *DeleteRequest) error {
	if req.Rationale == "" {
		return fmt.Errorf("rationale is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.MarkDeleted(ctx, id); err != nil {
		return err
	}
	if err := s.recordAudit(ctx, audit.ActionCriterionDelete, id, req.Actor, req.Rationale, nil); err != nil {
		s.logger.Error().Err(err).Str("criterion_id", id.String()).Msg("Failed to record delete audit event")
	}
	return nil
}

// CreateCriterion mirrors a criterion produced by the extraction backend.
func (s *Service) CreateCriterion(ctx context.Context, c *Criterion) (*Criterion, error) {
	if c.Status == "" {
		c.Status = StatusPending
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for i := range c.FieldMappings {
		c.FieldMappings[i].Normalize()
		if err := c.FieldMappings[i].Validate(); err != nil {
			return nil, fmt.Errorf("field mapping %d: %w", i, err)
		}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCriterion(ctx context.Context, id uuid.UUID) (*Criterion, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListCriteria(ctx context.Context, protocolID string, limit, offset int) ([]*Criterion, int, error) {
	if protocolID != "" {
		return s.repo.ListByProtocol(ctx, protocolID, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}

// Ground fetches grounding candidates for a criterion. Backend failures
// degrade to an empty candidate list so review can continue.
func (s *Service) Ground(ctx context.Context, id uuid.UUID) ([]extract.GroundingCandidate, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	candidates, err := s.grounder.Ground(ctx, id.String())
	if err != nil {
		s.logger.Warn().Err(err).Str("criterion_id", id.String()).Msg("Grounding unavailable")
		return []extract.GroundingCandidate{}, nil
	}
	return candidates, nil
}

// SuggestFields proxies field suggestions for free text. Backend failures
// degrade to no suggestions.
func (s *Service) SuggestFields(ctx context.Context, text string) ([]extract.FieldSuggestion, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	suggestions, err := s.grounder.SuggestFields(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Field suggestion unavailable")
		return []extract.FieldSuggestion{}, nil
	}
	return suggestions, nil
}

// EditMappingUpstream forwards a structured single-mapping edit to the
// extraction backend. Unlike the diff-based save path this applies one
// mapping change directly, without touching the local mirror; callers
// re-fetch the criterion afterwards.
func (s *Service) EditMappingUpstream(ctx context.Context, id uuid.UUID, actor string, edits extract.MappingEdits) error {
	if edits.Entity == "" || edits.Relation == "" {
		return fmt.Errorf("entity and relation are required")
	}
	if !mapping.ValidRelation(mapping.Relation(edits.Relation)) {
		return fmt.Errorf("invalid relation: %s", edits.Relation)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.grounder.EditMapping(ctx, id.String(), extract.EditMappingRequest{
		User:  actor,
		Edits: edits,
	})
}

func (s *Service) recordAudit(ctx context.Context, action string, id uuid.UUID, actor, rationale string, ops []mapping.Operation) error {
	detail := ""
	if len(ops) > 0 {
		b, err := json.Marshal(ops)
		if err == nil {
			detail = string(b)
		}
	}
	return s.auditor.Record(ctx, &audit.Event{
		Actor:      actor,
		Action:     action,
		EntityType: "criterion",
		EntityID:   id,
		Rationale:  rationale,
		Detail:     detail,
	})
}
