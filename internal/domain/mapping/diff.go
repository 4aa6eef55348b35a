package mapping

import (
	"github.com/google/uuid"
)

// CodeDiff is the result of comparing two code lists.
type CodeDiff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Empty reports whether the diff carries no changes.
func (d CodeDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// DiffCodes computes the set difference between the original and edited code
// lists. Added entries keep the edited list's order, removed entries keep the
// original list's order; downstream submission emits all additions before any
// removals. Comparing a list with itself yields an empty diff.
func DiffCodes(original, edited []string) CodeDiff {
	origSet := make(map[string]bool, len(original))
	for _, c := range original {
		origSet[c] = true
	}
	editSet := make(map[string]bool, len(edited))
	for _, c := range edited {
		editSet[c] = true
	}

	var d CodeDiff
	for _, c := range edited {
		if !origSet[c] {
			d.Added = append(d.Added, c)
		}
	}
	for _, c := range original {
		if !editSet[c] {
			d.Removed = append(d.Removed, c)
		}
	}
	return d
}

// MappingDiff is the result of comparing an original field mapping against
// its edited version.
type MappingDiff struct {
	RemoveOld bool          `json:"remove_old"`
	AddNew    *FieldMapping `json:"add_new,omitempty"`
}

// Empty reports whether the diff carries no changes.
func (d MappingDiff) Empty() bool {
	return !d.RemoveOld && d.AddNew == nil
}

// DiffFieldMapping treats a field mapping as replace-only: if any of field,
// relation or value differs, the original (when present) is removed in full
// and the edited version is added in full. Equal triples are a no-op even
// when other metadata (source text, novelty flags) differs.
func DiffFieldMapping(original, edited *FieldMapping) MappingDiff {
	switch {
	case original == nil && edited == nil:
		return MappingDiff{}
	case original == nil:
		return MappingDiff{AddNew: edited}
	case edited == nil:
		return MappingDiff{RemoveOld: true}
	}
	if original.TargetField == edited.TargetField &&
		original.Relation == edited.Relation &&
		original.TargetValue == edited.TargetValue {
		return MappingDiff{}
	}
	return MappingDiff{RemoveOld: true, AddNew: edited}
}

// Action names a single upstream feedback operation.
type Action string

const (
	ActionAddCode       Action = "add_code"
	ActionRemoveCode    Action = "remove_code"
	ActionAddMapping    Action = "add_mapping"
	ActionRemoveMapping Action = "remove_mapping"
)

// Operation is one entry of an intent list: a single, independently
// submittable change to a criterion.
type Operation struct {
	CriterionID uuid.UUID     `json:"criterion_id"`
	Action      Action        `json:"action"`
	Code        string        `json:"code,omitempty"`
	Mapping     *FieldMapping `json:"mapping,omitempty"`
}

// Plan builds the ordered intent list for a saved edit from a single
// snapshot comparison: code additions, then code removals, then the mapping
// replacement (remove before add). The order is arbitrary but deterministic;
// each operation is submitted as an independent call upstream.
func Plan(criterionID uuid.UUID, codes CodeDiff, fm MappingDiff) []Operation {
	var ops []Operation
	for _, c := range codes.Added {
		ops = append(ops, Operation{CriterionID: criterionID, Action: ActionAddCode, Code: c})
	}
	for _, c := range codes.Removed {
		ops = append(ops, Operation{CriterionID: criterionID, Action: ActionRemoveCode, Code: c})
	}
	if fm.RemoveOld {
		ops = append(ops, Operation{CriterionID: criterionID, Action: ActionRemoveMapping})
	}
	if fm.AddNew != nil {
		ops = append(ops, Operation{CriterionID: criterionID, Action: ActionAddMapping, Mapping: fm.AddNew})
	}
	return ops
}

// DiffMappings extends the replace-only rule to a criterion's full mapping
// list. Mappings are matched by their field/relation/value triple; metadata
// changes alone produce no operations. Removed keeps the original order,
// added keeps the edited order.
func DiffMappings(original, edited []FieldMapping) (removed, added []FieldMapping) {
	key := func(m FieldMapping) string {
		return m.TargetField + "\x00" + string(m.Relation) + "\x00" + m.TargetValue
	}
	origKeys := make(map[string]bool, len(original))
	for _, m := range original {
		origKeys[key(m)] = true
	}
	editKeys := make(map[string]bool, len(edited))
	for _, m := range edited {
		editKeys[key(m)] = true
	}
	for _, m := range original {
		if !editKeys[key(m)] {
			removed = append(removed, m)
		}
	}
	for _, m := range edited {
		if !origKeys[key(m)] {
			added = append(added, m)
		}
	}
	return removed, added
}

// PlanEdit builds the full intent list for a saved edit: code additions,
// code removals, mapping removals, mapping additions. Removal operations
// carry the original mapping so the upstream call can identify it.
func PlanEdit(criterionID uuid.UUID, codes CodeDiff, originalMappings, editedMappings []FieldMapping) []Operation {
	ops := Plan(criterionID, codes, MappingDiff{})
	removed, added := DiffMappings(originalMappings, editedMappings)
	for i := range removed {
		ops = append(ops, Operation{CriterionID: criterionID, Action: ActionRemoveMapping, Mapping: &removed[i]})
	}
	for i := range added {
		ops = append(ops, Operation{CriterionID: criterionID, Action: ActionAddMapping, Mapping: &added[i]})
	}
	return ops
}
