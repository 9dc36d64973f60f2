package utils

import (
	"context"
	"time"

	"github.com/khajiev13/amazon-crawler/config"
)

// Pause sleeps for a random duration drawn from d, returning early with the
// context's error if it is cancelled.
func Pause(ctx context.Context, d config.Delay) error {
	t := time.NewTimer(d.Random())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Truncate shortens s to n runes, appending an ellipsis when it cut anything.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
