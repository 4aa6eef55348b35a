package criteria

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/mapping"
)

// Criterion types. A not-applicable criterion is excluded from screening
// without being a normal inclusion/exclusion rule.
const (
	TypeInclusion     = "inclusion"
	TypeExclusion     = "exclusion"
	TypeNotApplicable = "not-applicable"
)

var validTypes = map[string]bool{
	TypeInclusion: true, TypeExclusion: true, TypeNotApplicable: true,
}

// Screening statuses assigned by the extraction backend.
const (
	StatusPending     = "pending"
	StatusMatched     = "matched"
	StatusLikely      = "likely"
	StatusNeedsReview = "needs-review"
	StatusNotMatched  = "not-matched"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusMatched: true, StatusLikely: true,
	StatusNeedsReview: true, StatusNotMatched: true,
}

// Criterion is one inclusion/exclusion rule under review. Criteria are
// created by the extraction backend and mirrored here; every local mutation
// goes through an explicit edit or delete action carrying a rationale.
// Deletion is logical only.
type Criterion struct {
	ID               uuid.UUID              `db:"id" json:"id"`
	ProtocolID       string                 `db:"protocol_id" json:"protocol_id"`
	Type             string                 `db:"type" json:"type"`
	Text             string                 `db:"text" json:"text"`
	Status           string                 `db:"status" json:"status"`
	Confidence       *float64               `db:"confidence" json:"confidence,omitempty"`
	SourceText       string                 `db:"source_text" json:"source_text"`
	SourceDocumentID string                 `db:"source_document_id" json:"source_document_id"`
	SnomedCodes      []string               `db:"snomed_codes" json:"snomed_codes"`
	FieldMappings    []mapping.FieldMapping `db:"-" json:"field_mappings"`
	Deleted          bool                   `db:"deleted" json:"deleted"`
	CreatedAt        time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time              `db:"updated_at" json:"updated_at"`
}

// Validate checks the criterion's own fields (not its mappings).
func (c *Criterion) Validate() error {
	if c.ProtocolID == "" {
		return fmt.Errorf("protocol_id is required")
	}
	if c.Text == "" {
		return fmt.Errorf("text is required")
	}
	if !validTypes[c.Type] {
		return fmt.Errorf("invalid type: %s", c.Type)
	}
	if !validStatuses[c.Status] {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	if c.Confidence != nil && (*c.Confidence < 0 || *c.Confidence > 1) {
		return fmt.Errorf("confidence must be in [0,1], got %v", *c.Confidence)
	}
	return nil
}
