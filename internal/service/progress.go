package service

import (
	"time"

	"smartstudy/internal/domain"

	"go.uber.org/zap"
)

// ChannelProgress forwards events to a channel without ever blocking; events
// are dropped when the buffer is full.
type ChannelProgress struct {
	events chan domain.ProgressEvent
}

// NewChannelProgress creates a ChannelProgress with the given buffer size.
func NewChannelProgress(buffer int) *ChannelProgress {
	return &ChannelProgress{events: make(chan domain.ProgressEvent, buffer)}
}

// Events exposes the receive side.
func (c *ChannelProgress) Events() <-chan domain.ProgressEvent {
	return c.events
}

func (c *ChannelProgress) Report(event domain.ProgressEvent) {
	select {
	case c.events <- event:
	default:
	}
}

// Close closes the channel; no Report may follow.
func (c *ChannelProgress) Close() {
	close(c.events)
}

// LoggingProgress writes every event to a zap logger.
type LoggingProgress struct {
	logger *zap.Logger
}

func NewLoggingProgress(logger *zap.Logger) *LoggingProgress {
	return &LoggingProgress{logger: logger}
}

func (l *LoggingProgress) Report(event domain.ProgressEvent) {
	l.logger.Info(event.Message,
		zap.String("stage", string(event.Stage)),
		zap.Int("current", event.Current),
		zap.Int("total", event.Total),
		zap.Int("batch", event.Batch),
		zap.Int("batches", event.Batches),
	)
}

// MultiProgress fans events out to several reporters in order.
type MultiProgress []domain.ProgressReporter

func (m MultiProgress) Report(event domain.ProgressEvent) {
	for _, r := range m {
		if r != nil {
			r.Report(event)
		}
	}
}

// progressEmitter stamps events and shields the pipeline from a nil or
// panicking reporter.
type progressEmitter struct {
	reporter domain.ProgressReporter
	logger   *zap.Logger
	now      func() time.Time
}

func (p progressEmitter) emit(event domain.ProgressEvent) {
	if p.reporter == nil {
		return
	}
	if event.At.IsZero() {
		event.At = p.now()
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Progress reporter panicked", zap.Any("panic", r), zap.String("stage", string(event.Stage)))
		}
	}()
	p.reporter.Report(event)
}
