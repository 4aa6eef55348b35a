package tracker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/platform/extract"
)

const pollPageSize = 100

// ProtocolLister is the slice of the extraction backend the poller needs.
type ProtocolLister interface {
	ListProtocols(ctx context.Context, skip, limit int) ([]extract.ProtocolSummary, error)
}

// Poller refreshes the task store from the backend's protocol listing on a
// fixed interval. Polling is best-effort: a failed cycle is logged at debug
// and otherwise swallowed, so the store simply keeps its previous state. At
// most one poll is in flight at a time.
type Poller struct {
	store    *Store
	lister   ProtocolLister
	interval time.Duration
	logger   zerolog.Logger
	inFlight atomic.Bool
	now      func() time.Time
}

func NewPoller(store *Store, lister ProtocolLister, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		store:    store,
		lister:   lister,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the poll loop until ctx is cancelled. It polls once immediately
// so the store is warm before the first tick.
func (p *Poller) Start(ctx context.Context) {
	p.PollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce fetches the current protocol listing and merges active entries
// into the store. Overlapping invocations are skipped.
func (p *Poller) PollOnce(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	protocols, err := p.lister.ListProtocols(ctx, 0, pollPageSize)
	if err != nil {
		// Best-effort: stale state beats a flapping error surface.
		p.logger.Debug().Err(err).Msg("protocol poll failed")
		return
	}

	now := p.now().UnixMilli()
	for _, summary := range protocols {
		task, active := deriveTask(summary, now)
		if !active {
			// Entries that leave the active set are deliberately left
			// untouched; there is no detail fetch to confirm a terminal
			// state yet.
			continue
		}
		p.store.Upsert(task)
	}
}

// deriveTask projects a protocol summary onto a Task. Only protocols in an
// active processing state produce a task.
func deriveTask(s extract.ProtocolSummary, now int64) (Task, bool) {
	var taskType TaskType
	var status TaskStatus

	switch s.ProcessingStatus {
	case "pending":
		taskType = TypeExtraction
		status = StatusPending
	case "extracting":
		taskType = TypeExtraction
		status = StatusRunning
	case "grounding":
		taskType = TypeGrounding
		status = StatusRunning
	default:
		return Task{}, false
	}

	t := Task{
		ID:        s.ProtocolID,
		Type:      taskType,
		Status:    status,
		UpdatedAt: now,
	}
	if s.TotalEstimated > 0 {
		progress := float64(s.ProcessedCount) / float64(s.TotalEstimated) * 100
		if progress > 100 {
			progress = 100
		}
		t.Progress = &progress
	}
	if s.ProgressMessage != nil {
		t.Message = *s.ProgressMessage
	} else {
		t.Message = fmt.Sprintf("%s %d/%d", s.ProcessingStatus, s.ProcessedCount, s.TotalEstimated)
	}
	return t, true
}
