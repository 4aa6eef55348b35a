package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the review audit trail.
const (
	ActionCriterionEdit   = "criterion.edit"
	ActionCriterionDelete = "criterion.delete"
	ActionConflictResolve = "conflict.resolve"
)

// Event is one append-only entry of the review audit trail. Events are never
// updated or deleted; every consequential reviewer action lands here with
// its rationale.
type Event struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Actor      string    `db:"actor" json:"actor"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID `db:"entity_id" json:"entity_id"`
	Rationale  string    `db:"rationale" json:"rationale"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	Recorded   time.Time `db:"recorded" json:"recorded"`
}
