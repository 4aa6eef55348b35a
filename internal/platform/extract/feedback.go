package extract

import (
	"context"
	"fmt"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/mapping"
)

// FeedbackSubmitter adapts the client's feedback endpoint to the
// mapping.Submitter interface used by the reconciler.
type FeedbackSubmitter struct {
	client *Client
}

func NewFeedbackSubmitter(client *Client) *FeedbackSubmitter {
	return &FeedbackSubmitter{client: client}
}

// Submit translates one intent-list operation into a feedback call.
func (s *FeedbackSubmitter) Submit(ctx context.Context, op mapping.Operation) error {
	req := FeedbackRequest{
		CriterionID: op.CriterionID.String(),
		Action:      string(op.Action),
	}
	switch op.Action {
	case mapping.ActionAddCode:
		req.SnomedCodeAdded = op.Code
	case mapping.ActionRemoveCode:
		req.SnomedCodeRemoved = op.Code
	case mapping.ActionAddMapping:
		req.FieldMappingAdded = op.Mapping
	case mapping.ActionRemoveMapping:
		req.FieldMappingRemoved = op.Mapping
	default:
		return fmt.Errorf("unknown feedback action: %s", op.Action)
	}
	return s.client.SendFeedback(ctx, op.CriterionID.String(), req)
}
