package service

import (
	"context"
	"time"
)

// Sleeper pauses for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
