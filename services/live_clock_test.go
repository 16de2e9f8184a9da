package services

import (
	"testing"
	"time"

	"gukina-api/models"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestComputeLiveMinuteFirstHalf(t *testing.T) {
	now := time.Now()
	m := &models.Match{
		Status:        models.StatusLive,
		LiveStartTime: timePtr(now.Add(-10 * time.Minute)),
	}
	assert.Equal(t, 10, ComputeLiveMinute(m, now))
}

func TestComputeLiveMinuteSecondHalf(t *testing.T) {
	now := time.Now()
	m := &models.Match{
		Status:            models.StatusLive,
		LiveStartTime:     timePtr(now.Add(-60 * time.Minute)),
		HalfTimeStartTime: timePtr(now.Add(-3 * time.Minute)),
	}
	assert.Equal(t, 48, ComputeLiveMinute(m, now))
}

func TestComputeLiveMinuteStoppageTimeUncapped(t *testing.T) {
	now := time.Now()
	m := &models.Match{
		Status:            models.StatusLive,
		HalfTimeStartTime: timePtr(now.Add(-49 * time.Minute)),
	}
	assert.Equal(t, 94, ComputeLiveMinute(m, now))
}

func TestComputeLiveMinuteNonLiveReturnsStoredMinute(t *testing.T) {
	now := time.Now()
	// timestamps must be ignored outside the live state
	for _, status := range []string{
		models.StatusNotStarted,
		models.StatusHalftime,
		models.StatusEnded,
		models.StatusPostponed,
		models.StatusCanceled,
	} {
		m := &models.Match{
			Status:        status,
			CurrentMinute: 45,
			LiveStartTime: timePtr(now.Add(-80 * time.Minute)),
		}
		assert.Equal(t, 45, ComputeLiveMinute(m, now), "status %s", status)
	}
}

func TestComputeLiveMinuteNeverNegative(t *testing.T) {
	now := time.Now()

	m := &models.Match{
		Status:        models.StatusLive,
		LiveStartTime: timePtr(now.Add(5 * time.Minute)), // clock skew
	}
	assert.Equal(t, 0, ComputeLiveMinute(m, now))

	m = &models.Match{
		Status:            models.StatusLive,
		HalfTimeStartTime: timePtr(now.Add(2 * time.Minute)),
	}
	assert.Equal(t, 45, ComputeLiveMinute(m, now))
}

func TestComputeLiveMinuteMissingTimestamps(t *testing.T) {
	now := time.Now()

	m := &models.Match{Status: models.StatusLive, CurrentMinute: 17}
	assert.Equal(t, 17, ComputeLiveMinute(m, now))

	m = &models.Match{Status: models.StatusLive}
	assert.Equal(t, 0, ComputeLiveMinute(m, now))

	assert.Equal(t, 0, ComputeLiveMinute(nil, now))
}
