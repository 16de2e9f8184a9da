package services

import (
	"testing"
	"time"

	"gukina-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStatusTransitionKickoff(t *testing.T) {
	now := time.Now()
	m := &models.Match{Status: models.StatusNotStarted}

	require.NoError(t, ApplyStatusTransition(m, models.StatusLive, now))
	assert.Equal(t, models.StatusLive, m.Status)
	require.NotNil(t, m.LiveStartTime)
	assert.Equal(t, now, *m.LiveStartTime)
	assert.Nil(t, m.HalfTimeStartTime)
}

func TestApplyStatusTransitionHalftimeFreezesMinute(t *testing.T) {
	kickoff := time.Now().Add(-46 * time.Minute)
	m := &models.Match{Status: models.StatusLive, LiveStartTime: &kickoff}

	require.NoError(t, ApplyStatusTransition(m, models.StatusHalftime, time.Now()))
	assert.Equal(t, models.StatusHalftime, m.Status)
	assert.Equal(t, 46, m.CurrentMinute)
}

func TestApplyStatusTransitionSecondHalfRestart(t *testing.T) {
	kickoff := time.Now().Add(-60 * time.Minute)
	m := &models.Match{
		Status:        models.StatusHalftime,
		LiveStartTime: &kickoff,
		CurrentMinute: 45,
	}

	restart := time.Now()
	require.NoError(t, ApplyStatusTransition(m, models.StatusLive, restart))
	assert.Equal(t, models.StatusLive, m.Status)
	require.NotNil(t, m.HalfTimeStartTime)
	assert.Equal(t, restart, *m.HalfTimeStartTime)
	// kickoff timestamp survives the restart
	assert.Equal(t, kickoff, *m.LiveStartTime)

	// the clock now runs from the 45 offset
	assert.Equal(t, 45, ComputeLiveMinute(m, restart))
	assert.Equal(t, 48, ComputeLiveMinute(m, restart.Add(3*time.Minute)))
}

func TestApplyStatusTransitionFullTime(t *testing.T) {
	restart := time.Now().Add(-47 * time.Minute)
	m := &models.Match{
		Status:            models.StatusLive,
		HalfTimeStartTime: &restart,
	}

	now := time.Now()
	require.NoError(t, ApplyStatusTransition(m, models.StatusEnded, now))
	assert.Equal(t, models.StatusEnded, m.Status)
	assert.Equal(t, 92, m.CurrentMinute)

	// the frozen minute keeps being served after full time
	assert.Equal(t, 92, ComputeLiveMinute(m, now.Add(2*time.Hour)))
}

func TestApplyStatusTransitionEndedIsTerminal(t *testing.T) {
	m := &models.Match{Status: models.StatusEnded, CurrentMinute: 90}
	err := ApplyStatusTransition(m, models.StatusLive, time.Now())
	require.Error(t, err)
	assert.Equal(t, models.StatusEnded, m.Status)
}

func TestApplyStatusTransitionUnknownStatus(t *testing.T) {
	m := &models.Match{Status: models.StatusNotStarted}
	err := ApplyStatusTransition(m, "paused", time.Now())
	require.Error(t, err)
	assert.Equal(t, models.StatusNotStarted, m.Status)
}

func TestApplyStatusTransitionNoOp(t *testing.T) {
	kickoff := time.Now().Add(-10 * time.Minute)
	m := &models.Match{Status: models.StatusLive, LiveStartTime: &kickoff}

	require.NoError(t, ApplyStatusTransition(m, models.StatusLive, time.Now()))
	// re-sending the current status must not reset the kickoff timestamp
	assert.Equal(t, kickoff, *m.LiveStartTime)
}

func TestMovedScope(t *testing.T) {
	prev := strPtr("league-1")

	m := &models.Match{LeagueID: strPtr("league-1"), Season: "2024"}
	assert.False(t, movedScope(prev, "2024", m))

	// editing an ended match's season relocates its contribution: the
	// old scope must be rebuilt too, not just the new one
	m = &models.Match{LeagueID: strPtr("league-1"), Season: "2025"}
	assert.True(t, movedScope(prev, "2024", m))

	m = &models.Match{LeagueID: strPtr("league-2"), Season: "2024"}
	assert.True(t, movedScope(prev, "2024", m))

	m = &models.Match{Season: "2024"}
	assert.True(t, movedScope(prev, "2024", m), "league reference dropped")

	assert.False(t, movedScope(nil, "2024", m), "no previous scope to go stale")
}

func TestStreamStateEmitsOnChange(t *testing.T) {
	st := newStreamState()
	m := &models.Match{Status: models.StatusLive}

	assert.True(t, st.changed(m, 10), "first frame always goes out")
	assert.False(t, st.changed(m, 10), "identical frame is suppressed")
	assert.True(t, st.changed(m, 11), "minute tick")

	// a refetched score must be pushed without waiting for the minute
	// to advance
	m.HomeScore = 1
	assert.True(t, st.changed(m, 11))
	assert.False(t, st.changed(m, 11))

	m.Status = models.StatusHalftime
	assert.True(t, st.changed(m, 11))
}

func TestCurrentSeason(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024", CurrentSeason(now))
}

func TestFallbackSeasons(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024", "2023", "2022", "2021"}, FallbackSeasons(now))
}
