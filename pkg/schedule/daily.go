// Package schedule runs jobs at a fixed wall-clock time each day.
package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(at string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", at, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextDaily returns the first instant >= now that falls on hour:minute in now's location.
// It depends only on now, so it may be recomputed after any delay.
func NextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Daily calls job every day at "HH:MM" until ctx is done. Job errors are logged and the loop
// continues with the next slot.
func Daily(ctx context.Context, logger *zap.Logger, name, at string, job func(context.Context) error) error {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return err
	}

	for {
		next := NextDaily(time.Now(), hour, minute)
		logger.Info("job scheduled", zap.String("job", name), zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if err := job(ctx); err != nil {
			logger.Error("job failed", zap.String("job", name), zap.Error(err))
		}

		// never fire twice within the same minute
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Minute - time.Duration(time.Now().Second())*time.Second):
		}
	}
}
