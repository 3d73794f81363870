package domain

import "time"

// Status is the liveness of a station derived from the age of its latest
// transmission.
type Status string

const (
	StatusOnline  Status = "Online"
	StatusDelayed Status = "Delayed"
	StatusOffline Status = "Offline"
)

// Default liveness bounds.
const (
	DefaultDelayedAfter = 24 * time.Hour
	DefaultOfflineAfter = 72 * time.Hour
)

// Thresholds bounds the liveness buckets. An elapsed time exactly equal to a
// bound stays in the less urgent bucket.
type Thresholds struct {
	DelayedAfter time.Duration
	OfflineAfter time.Duration
}

// DefaultThresholds returns the 24h / 72h bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{DelayedAfter: DefaultDelayedAfter, OfflineAfter: DefaultOfflineAfter}
}

// Classify maps the time elapsed since lastSeen to a Status.
func (th Thresholds) Classify(now, lastSeen time.Time) Status {
	elapsed := now.Sub(lastSeen)
	switch {
	case elapsed > th.OfflineAfter:
		return StatusOffline
	case elapsed > th.DelayedAfter:
		return StatusDelayed
	default:
		return StatusOnline
	}
}

// Classify applies the default thresholds.
func Classify(now, lastSeen time.Time) Status {
	return DefaultThresholds().Classify(now, lastSeen)
}
