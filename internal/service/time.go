package service

import "time"

// truncateToSecond normalizes minute-precision client input to second
// precision on ingest. Nil-safe for optional timestamps.
func truncateToSecond(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	tt := t.Truncate(time.Second)
	return &tt
}
