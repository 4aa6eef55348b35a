package conflict

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conflict statuses.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Resolution scopes. Site-only keeps the chosen mapping local to the site
// that raised it; align-network propagates it as the network-wide choice.
const (
	ScopeSiteOnly     = "site-only"
	ScopeAlignNetwork = "align-network"
)

var validScopes = map[string]bool{ScopeSiteOnly: true, ScopeAlignNetwork: true}

// Candidate is one site's existing mapping for the conflicted term.
type Candidate struct {
	Site        string `json:"site"`
	Code        string `json:"code"`
	System      string `json:"system"`
	Description string `json:"description"`
	UsageCount  int    `json:"usage_count"`
	Recommended bool   `json:"recommended"`
}

// Conflict records that two sites map the same term to different codes.
// A conflict is resolved whole-or-nothing: one candidate wins outright,
// there is no partial merge of the two mappings.
type Conflict struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	Term       string      `db:"term" json:"term"`
	Candidates []Candidate `db:"candidates" json:"candidates"`
	Status     string      `db:"status" json:"status"`
	ChosenIdx  *int        `db:"chosen_idx" json:"chosen_idx,omitempty"`
	Rationale  string      `db:"rationale" json:"rationale,omitempty"`
	ApplyScope string      `db:"apply_scope" json:"apply_scope,omitempty"`
	ResolvedBy string      `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time  `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// Validate checks a conflict as created: an unresolved term with at least
// two competing candidates.
func (c *Conflict) Validate() error {
	if c.Term == "" {
		return fmt.Errorf("term is required")
	}
	if len(c.Candidates) < 2 {
		return fmt.Errorf("a conflict needs at least two candidates, got %d", len(c.Candidates))
	}
	for i, cand := range c.Candidates {
		if cand.Site == "" || cand.Code == "" {
			return fmt.Errorf("candidate %d: site and code are required", i)
		}
	}
	return nil
}

// Recommended returns the index of the recommended candidate, or -1 when no
// candidate is marked.
func (c *Conflict) Recommended() int {
	for i, cand := range c.Candidates {
		if cand.Recommended {
			return i
		}
	}
	return -1
}
