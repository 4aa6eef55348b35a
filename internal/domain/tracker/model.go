package tracker

// TaskType distinguishes the two processing phases tracked per protocol.
type TaskType string

const (
	TypeExtraction TaskType = "extraction"
	TypeGrounding  TaskType = "grounding"
)

// TaskStatus is the derived processing state of a protocol.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// Task is a derived, non-authoritative projection of a protocol's remote
// processing status. It is recomputed every poll cycle; the extraction
// backend owns the real state.
type Task struct {
	ID        string     `json:"id"` // protocol id
	Type      TaskType   `json:"type"`
	Status    TaskStatus `json:"status"`
	Progress  *float64   `json:"progress,omitempty"` // 0-100, nil = unknown
	Message   string     `json:"message"`
	UpdatedAt int64      `json:"updated_at"` // epoch ms
}

// Terminal reports whether the task has reached a final state.
func (t Task) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}
