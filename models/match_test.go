package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func validLeagued() Match {
	return Match{
		Kind:       MatchKindLeagued,
		HomeTeamID: ptr("team-a"),
		AwayTeamID: ptr("team-b"),
		LeagueID:   ptr("league-1"),
		Season:     "2024",
		MatchDate:  time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
		Status:     StatusNotStarted,
	}
}

func TestMatchValidateLeagued(t *testing.T) {
	m := validLeagued()
	assert.NoError(t, m.Validate())

	m = validLeagued()
	m.LeagueID = nil
	assert.Error(t, m.Validate())

	m = validLeagued()
	m.AwayTeamID = m.HomeTeamID
	assert.ErrorIs(t, m.Validate(), ErrSameTeam)

	m = validLeagued()
	m.Season = ""
	assert.Error(t, m.Validate())
}

func TestMatchValidateStandalone(t *testing.T) {
	m := Match{
		Kind:         MatchKindStandalone,
		HomeTeamName: "Gor Mahia",
		AwayTeamName: "Yanga SC",
		Season:       "2024",
	}
	assert.NoError(t, m.Validate())

	m.AwayTeamName = ""
	assert.Error(t, m.Validate())
}

func TestMatchValidateRejectsUnknownKindAndStatus(t *testing.T) {
	m := validLeagued()
	m.Kind = "exhibition"
	assert.Error(t, m.Validate())

	m = validLeagued()
	m.Status = "suspended"
	assert.Error(t, m.Validate())
}

func TestMatchInPlay(t *testing.T) {
	assert.True(t, (&Match{Status: StatusLive}).InPlay())
	assert.True(t, (&Match{Status: StatusHalftime}).InPlay())
	assert.False(t, (&Match{Status: StatusEnded}).InPlay())
	assert.False(t, (&Match{Status: StatusNotStarted}).InPlay())
}

func TestMatchDecorate(t *testing.T) {
	m := validLeagued()
	m.Status = StatusLive
	m.Decorate(37)

	assert.Equal(t, 37, m.LiveMinute)
	require.NotNil(t, m.StatusDescriptor)
	assert.Equal(t, "Live", m.StatusDescriptor.Label)
	assert.Equal(t, "status-live", m.StatusDescriptor.StyleClass)
}

func TestStandingAppendForm(t *testing.T) {
	var s Standing
	for _, r := range "WWDLWDL" {
		s.AppendForm(byte(r))
	}
	assert.Equal(t, "DLWDL", s.Form, "only the most recent results are kept, oldest first")
}

func TestMatchEventValidate(t *testing.T) {
	e := MatchEvent{Type: EventGoal, Minute: 23}
	assert.NoError(t, e.Validate())

	e = MatchEvent{Type: "own_goal", Minute: 23}
	assert.Error(t, e.Validate())

	e = MatchEvent{Type: EventRedCard, Minute: -1}
	assert.Error(t, e.Validate())
}
