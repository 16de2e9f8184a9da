package services

import (
	"time"

	"gukina-api/models"
)

// ComputeLiveMinute derives the minute to display for a match right
// now, from the stored snapshot and the wall clock. Pure — callers
// re-run it on a timer instead of asking the server every tick.
//
// The clock only runs while the status is exactly "live". Halftime,
// ended and not-yet-started matches show the last persisted minute.
// Minutes past 45/90 are shown uncapped (stoppage time).
func ComputeLiveMinute(m *models.Match, now time.Time) int {
	if m == nil || m.Status != models.StatusLive {
		if m == nil {
			return 0
		}
		return m.CurrentMinute
	}

	if m.HalfTimeStartTime != nil {
		// second half in progress
		return 45 + elapsedMinutes(*m.HalfTimeStartTime, now)
	}
	if m.LiveStartTime != nil {
		return elapsedMinutes(*m.LiveStartTime, now)
	}

	// malformed snapshot: live without a kickoff timestamp
	return m.CurrentMinute
}

// elapsedMinutes never goes negative, so clock skew or a timestamp in
// the future cannot produce a negative minute.
func elapsedMinutes(from, now time.Time) int {
	if now.Before(from) {
		return 0
	}
	return int(now.Sub(from) / time.Minute)
}
