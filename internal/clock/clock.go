// Package clock drives the header clock.
package clock

import (
	"context"
	"time"
)

// Layout renders day/month/year and 24h time, as the header shows it.
const Layout = "02/01/2006 15:04:05"

// Format renders t for the header.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Stream emits the formatted current time once immediately and then once per
// interval. The ticker lives only for the duration of the call: it stops when
// ctx is done or emit fails, typically because the client went away.
func Stream(ctx context.Context, interval time.Duration, now func() time.Time, emit func(string) error) error {
	if now == nil {
		now = time.Now
	}
	if err := emit(Format(now())); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := emit(Format(now())); err != nil {
				return err
			}
		}
	}
}
