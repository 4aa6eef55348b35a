// Package mapping holds the field-mapping rule model: the structured
// "field relation value" assertions reviewers attach to eligibility
// criteria, plus the diffing logic used to reconcile edits against the
// extraction backend.
package mapping

import (
	"fmt"
	"strings"
)

// Relation is the comparison operator of a field mapping.
type Relation string

const (
	RelEq          Relation = "="
	RelNe          Relation = "!="
	RelGt          Relation = ">"
	RelGe          Relation = ">="
	RelLt          Relation = "<"
	RelLe          Relation = "<="
	RelWithin      Relation = "within"
	RelNotInLast   Relation = "not_in_last"
	RelContains    Relation = "contains"
	RelNotContains Relation = "not_contains"
)

var validRelations = map[Relation]bool{
	RelEq: true, RelNe: true, RelGt: true, RelGe: true, RelLt: true, RelLe: true,
	RelWithin: true, RelNotInLast: true, RelContains: true, RelNotContains: true,
}

// ValidRelation reports whether r is one of the supported relations.
func ValidRelation(r Relation) bool {
	return validRelations[r]
}

// DurationUnits are the units accepted for not_in_last mappings.
var DurationUnits = []string{"days", "weeks", "months", "years"}

// ValidDurationUnit reports whether unit is an accepted duration unit.
func ValidDurationUnit(unit string) bool {
	for _, u := range DurationUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// FieldMapping is a structured assertion about a patient-record field.
// Exactly one value shape is populated, determined by Relation: a single
// value, a (min, max) range for within, or a (duration, unit) pair for
// not_in_last.
type FieldMapping struct {
	TargetField     string   `db:"target_field" json:"target_field"`
	Relation        Relation `db:"relation" json:"relation"`
	TargetValue     string   `db:"target_value" json:"target_value"`
	TargetValueMin  string   `db:"target_value_min" json:"target_value_min,omitempty"`
	TargetValueMax  string   `db:"target_value_max" json:"target_value_max,omitempty"`
	TargetValueUnit string   `db:"target_value_unit" json:"target_value_unit,omitempty"`
	IsNewField      bool     `db:"is_new_field" json:"is_new_field"`
	IsNewValue      bool     `db:"is_new_value" json:"is_new_value"`
	SourceText      string   `db:"source_text" json:"source_text"`
}

// RenderRange produces the canonical display value for a within mapping.
func RenderRange(min, max string) string {
	return fmt.Sprintf("%s - %s", min, max)
}

// RenderDuration produces the canonical display value for a not_in_last
// mapping.
func RenderDuration(duration, unit string) string {
	return fmt.Sprintf("%s %s", duration, unit)
}

// Render returns the canonical string form of the mapping's value. It is
// idempotent: parsing a rendered value and rendering it again yields the
// same string.
func (m *FieldMapping) Render() string {
	switch m.Relation {
	case RelWithin:
		return RenderRange(m.TargetValueMin, m.TargetValueMax)
	case RelNotInLast:
		return RenderDuration(m.Duration(), m.TargetValueUnit)
	default:
		return m.TargetValue
	}
}

// Duration returns the numeric part of a not_in_last mapping's value.
func (m *FieldMapping) Duration() string {
	if m.Relation != RelNotInLast {
		return ""
	}
	return strings.TrimSuffix(m.TargetValue, " "+m.TargetValueUnit)
}

// ParseValue splits a canonical display value back into its parts for the
// given relation. For within it returns (min, max); for not_in_last it
// returns (duration, unit); for every other relation it returns (value, "").
func ParseValue(relation Relation, value string) (string, string, error) {
	switch relation {
	case RelWithin:
		parts := strings.SplitN(value, " - ", 2)
		if len(parts) != 2 {
			return "", "", fmt.Errorf("range value %q is not in \"min - max\" form", value)
		}
		return parts[0], parts[1], nil
	case RelNotInLast:
		parts := strings.SplitN(value, " ", 2)
		if len(parts) != 2 || !ValidDurationUnit(parts[1]) {
			return "", "", fmt.Errorf("duration value %q is not in \"n unit\" form", value)
		}
		return parts[0], parts[1], nil
	default:
		return value, "", nil
	}
}

// Parse builds a FieldMapping from a canonical display value.
func Parse(field string, relation Relation, value string) (*FieldMapping, error) {
	if !ValidRelation(relation) {
		return nil, fmt.Errorf("invalid relation: %s", relation)
	}
	m := &FieldMapping{TargetField: field, Relation: relation}
	a, b, err := ParseValue(relation, value)
	if err != nil {
		return nil, err
	}
	switch relation {
	case RelWithin:
		m.TargetValueMin = a
		m.TargetValueMax = b
	case RelNotInLast:
		m.TargetValueUnit = b
	}
	m.TargetValue = value
	return m, nil
}

// Normalize recomputes TargetValue from the relation-specific parts so the
// stored value is always the canonical rendering.
func (m *FieldMapping) Normalize() {
	switch m.Relation {
	case RelWithin:
		m.TargetValue = RenderRange(m.TargetValueMin, m.TargetValueMax)
	case RelNotInLast:
		if m.TargetValueUnit != "" && !strings.HasSuffix(m.TargetValue, " "+m.TargetValueUnit) {
			m.TargetValue = RenderDuration(m.TargetValue, m.TargetValueUnit)
		}
	}
}

// Validate enforces the value-shape invariant. A within mapping missing
// either bound, or a not_in_last mapping missing its duration or unit, is
// incomplete and must not be saved.
func (m *FieldMapping) Validate() error {
	if m.TargetField == "" {
		return fmt.Errorf("target_field is required")
	}
	if !ValidRelation(m.Relation) {
		return fmt.Errorf("invalid relation: %s", m.Relation)
	}
	switch m.Relation {
	case RelWithin:
		if m.TargetValueMin == "" || m.TargetValueMax == "" {
			return fmt.Errorf("within mapping requires both min and max")
		}
		if m.TargetValueUnit != "" {
			return fmt.Errorf("within mapping must not carry a duration unit")
		}
		if m.TargetValue != RenderRange(m.TargetValueMin, m.TargetValueMax) {
			return fmt.Errorf("target_value %q does not match range %q", m.TargetValue, m.Render())
		}
	case RelNotInLast:
		if !ValidDurationUnit(m.TargetValueUnit) {
			return fmt.Errorf("invalid duration unit: %q", m.TargetValueUnit)
		}
		if m.Duration() == "" || m.Duration() == m.TargetValue {
			return fmt.Errorf("not_in_last mapping requires a duration")
		}
		if m.TargetValueMin != "" || m.TargetValueMax != "" {
			return fmt.Errorf("not_in_last mapping must not carry range bounds")
		}
	default:
		if m.TargetValue == "" {
			return fmt.Errorf("target_value is required")
		}
		if m.TargetValueMin != "" || m.TargetValueMax != "" || m.TargetValueUnit != "" {
			return fmt.Errorf("relation %s takes a single value", m.Relation)
		}
	}
	return nil
}

// Inputs carries the in-progress editor state checked by CanProceed. Range
// and duration entry follow an enter-then-confirm protocol so a half-typed
// value cannot be submitted.
type Inputs struct {
	Selected          string
	Typed             string
	Min               string
	Max               string
	Duration          string
	Unit              string
	RangeConfirmed    bool
	DurationConfirmed bool
}

// CanProceed reports whether the editor state is complete enough to save a
// mapping with the given relation.
func CanProceed(relation Relation, in Inputs) bool {
	switch relation {
	case RelWithin:
		return in.Min != "" && in.Max != "" && in.RangeConfirmed
	case RelNotInLast:
		return in.Duration != "" && in.DurationConfirmed
	default:
		return in.Selected != "" || in.Typed != ""
	}
}

// NewField reports whether candidate has no match in the known field
// taxonomy at save time.
func NewField(candidate string, known []string) bool {
	if candidate == "" {
		return false
	}
	for _, f := range known {
		if f == candidate {
			return false
		}
	}
	return true
}

// NewValue reports whether candidate was free-typed rather than chosen from
// the suggested values for the field.
func NewValue(candidate string, suggestions []string) bool {
	if candidate == "" {
		return false
	}
	for _, s := range suggestions {
		if s == candidate {
			return false
		}
	}
	return true
}
