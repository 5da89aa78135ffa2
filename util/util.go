package util

import (
	"context"
	"time"
)

// Sleep pauses the calling goroutine for d or until ctx is done, whichever
// comes first. It returns ctx.Err() if the context ended the sleep.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Seconds converts a fractional number of seconds to a time.Time.
func Seconds(s float64) time.Time {
	sec := int64(s)
	return time.Unix(sec, int64((s-float64(sec))*float64(time.Second)))
}
