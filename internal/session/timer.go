package session

import "time"

// timer tracks active (non-paused) elapsed time for one workout session.
// Every read recomputes from the start timestamp instead of accumulating
// increments, so missed ticks or app suspensions cannot introduce drift.
type timer struct {
	startedAt   time.Time
	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
}

// elapsedSec returns whole active seconds since startedAt, clamped to >= 0.
// While paused the value is frozen at the moment of pausing.
func (t *timer) elapsedSec(now time.Time) int {
	if t.startedAt.IsZero() {
		return 0
	}
	ref := now
	if t.paused {
		ref = t.pausedAt
	}
	elapsed := ref.Sub(t.startedAt) - t.totalPaused
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Second)
}

// pause records the pause timestamp. Pausing twice is a no-op.
func (t *timer) pause(now time.Time) {
	if t.paused || t.startedAt.IsZero() {
		return
	}
	t.paused = true
	t.pausedAt = now
}

// resume folds the just-elapsed pause interval into the cumulative total.
// Resuming without a matching pause is a no-op.
func (t *timer) resume(now time.Time) {
	if !t.paused {
		return
	}
	t.totalPaused += now.Sub(t.pausedAt)
	t.paused = false
	t.pausedAt = time.Time{}
}
