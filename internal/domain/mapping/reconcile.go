package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Submitter sends a single operation to the extraction backend. Each call is
// atomic on the server; there is no batch endpoint.
type Submitter interface {
	Submit(ctx context.Context, op Operation) error
}

// OperationResult records the outcome of submitting one operation.
type OperationResult struct {
	Op       Operation `json:"op"`
	Attempts int       `json:"attempts"`
	Err      error     `json:"-"`
	Error    string    `json:"error,omitempty"`
}

// Reconciler submits an intent list operation by operation with bounded
// at-least-once retry. The backend offers no transaction across calls, so a
// partial failure leaves the criterion in a mixed state; the reconciler
// reports exactly which operations landed so the caller can re-fetch and
// recover instead of guessing.
type Reconciler struct {
	sub         Submitter
	logger      zerolog.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewReconciler(sub Submitter, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		sub:         sub,
		logger:      logger,
		maxAttempts: 3,
		backoff:     100 * time.Millisecond,
	}
}

// SetRetry overrides the retry bound and backoff between attempts.
func (r *Reconciler) SetRetry(maxAttempts int, backoff time.Duration) {
	if maxAttempts > 0 {
		r.maxAttempts = maxAttempts
	}
	r.backoff = backoff
}

// Submit sends every operation in order. It never stops early: later
// operations are attempted even when an earlier one fails, since the calls
// are independent upstream. The returned error is non-nil when any operation
// exhausted its retries; the results carry the per-operation detail.
func (r *Reconciler) Submit(ctx context.Context, ops []Operation) ([]OperationResult, error) {
	results := make([]OperationResult, 0, len(ops))
	failed := 0

	for _, op := range ops {
		res := OperationResult{Op: op}
		for res.Attempts < r.maxAttempts {
			res.Attempts++
			res.Err = r.sub.Submit(ctx, op)
			if res.Err == nil {
				break
			}
			r.logger.Warn().
				Str("criterion_id", op.CriterionID.String()).
				Str("action", string(op.Action)).
				Int("attempt", res.Attempts).
				Err(res.Err).
				Msg("feedback operation failed")
			if res.Attempts < r.maxAttempts && r.backoff > 0 {
				select {
				case <-ctx.Done():
					res.Err = ctx.Err()
					res.Error = res.Err.Error()
					results = append(results, res)
					return results, ctx.Err()
				case <-time.After(r.backoff):
				}
			}
		}
		if res.Err != nil {
			res.Error = res.Err.Error()
			failed++
		}
		results = append(results, res)
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d feedback operations failed", failed, len(ops))
	}
	return results, nil
}
