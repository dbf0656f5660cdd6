package domain

import "time"

// ProgressStage identifies where in a generation run an event was emitted.
type ProgressStage string

const (
	StageStarted        ProgressStage = "started"
	StageBatchStarted   ProgressStage = "batch_started"
	StageBatchCompleted ProgressStage = "batch_completed"
	StageBatchFallback  ProgressStage = "batch_fallback"
	StageCompleted      ProgressStage = "completed"
)

// ProgressEvent is a human-readable status update with counts.
type ProgressEvent struct {
	Stage   ProgressStage `json:"stage"`
	Message string        `json:"message"`
	Current int           `json:"current"`
	Total   int           `json:"total"`
	Batch   int           `json:"batch,omitempty"`
	Batches int           `json:"batches,omitempty"`
	At      time.Time     `json:"at"`
}

// ProgressReporter receives status events from a generation run.
// Report must not block for long; the pipeline waits for it to return.
type ProgressReporter interface {
	Report(event ProgressEvent)
}

// ProgressFunc adapts a plain (message, current, total) callback.
type ProgressFunc func(message string, current, total int)

// Report implements ProgressReporter.
func (f ProgressFunc) Report(event ProgressEvent) {
	if f != nil {
		f(event.Message, event.Current, event.Total)
	}
}

// NopProgress discards every event.
var NopProgress ProgressReporter = nopProgress{}

type nopProgress struct{}

func (nopProgress) Report(ProgressEvent) {}
