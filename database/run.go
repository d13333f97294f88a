package database

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// RunStatus represents the status of a batch run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one batch generation run
type Run struct {
	ID          ulid.ULID  `json:"id"`
	Status      RunStatus  `json:"status"`
	Progress    int        `json:"progress"`    // 0-100
	CurrentStep string     `json:"currentStep"` // Human-readable current step
	Requested   int        `json:"requested"`   // documents asked for
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Message     string     `json:"message"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Active reports whether the run is still in flight.
func (r *Run) Active() bool {
	return r.Status == RunStatusPending || r.Status == RunStatusRunning
}
