package services

import (
	"strings"
	"testing"
	"time"

	"gukina-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLeague = "league-1"
	testSeason = "2024"
)

func strPtr(s string) *string { return &s }

func endedMatch(home, away string, homeScore, awayScore, day int) models.Match {
	return models.Match{
		Kind:       models.MatchKindLeagued,
		LeagueID:   strPtr(testLeague),
		Season:     testSeason,
		HomeTeamID: strPtr(home),
		AwayTeamID: strPtr(away),
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Status:     models.StatusEnded,
		MatchDate:  time.Date(2024, 3, day, 15, 0, 0, 0, time.UTC),
	}
}

func rowFor(t *testing.T, rows []models.Standing, teamID string) models.Standing {
	t.Helper()
	for _, r := range rows {
		if r.TeamID == teamID {
			return r
		}
	}
	t.Fatalf("no row for team %s", teamID)
	return models.Standing{}
}

var testNames = map[string]string{
	"team-a": "Arsenal",
	"team-b": "Brentford",
	"team-c": "Chelsea",
}

func TestBuildTableRoundRobin(t *testing.T) {
	matches := []models.Match{
		endedMatch("team-a", "team-b", 2, 1, 1),
		endedMatch("team-b", "team-c", 0, 0, 2),
		endedMatch("team-c", "team-a", 1, 3, 3),
	}

	rows := BuildTable(testLeague, testSeason, matches, testNames)
	require.Len(t, rows, 3)

	a := rowFor(t, rows, "team-a")
	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 2, a.Played)
	assert.Equal(t, 2, a.Won)
	assert.Equal(t, 0, a.Drawn)
	assert.Equal(t, 0, a.Lost)
	assert.Equal(t, 5, a.GoalsFor)
	assert.Equal(t, 2, a.GoalsAgainst)
	assert.Equal(t, 3, a.GoalDifference)
	assert.Equal(t, 6, a.Points)
	assert.Equal(t, "WW", a.Form)

	b := rowFor(t, rows, "team-b")
	assert.Equal(t, 2, b.Played)
	assert.Equal(t, 0, b.Won)
	assert.Equal(t, 1, b.Drawn)
	assert.Equal(t, 1, b.Lost)
	assert.Equal(t, 1, b.Points)
	assert.Equal(t, "LD", b.Form)

	c := rowFor(t, rows, "team-c")
	assert.Equal(t, 1, c.Points)
	assert.Equal(t, "DL", c.Form)

	// B and C are level on points; B's goal difference (-1) beats C's (-2)
	assert.Equal(t, 2, b.Position)
	assert.Equal(t, 3, c.Position)
}

func TestBuildTableConservation(t *testing.T) {
	matches := []models.Match{
		endedMatch("team-a", "team-b", 4, 0, 1),
		endedMatch("team-b", "team-c", 2, 2, 2),
		endedMatch("team-c", "team-a", 1, 0, 3),
		endedMatch("team-a", "team-c", 3, 3, 4),
		endedMatch("team-b", "team-a", 1, 2, 5),
	}

	rows := BuildTable(testLeague, testSeason, matches, testNames)

	var won, lost, drawn, gf, ga, points int
	for _, r := range rows {
		won += r.Won
		lost += r.Lost
		drawn += r.Drawn
		gf += r.GoalsFor
		ga += r.GoalsAgainst
		points += r.Points
	}

	decisive, draws := 3, 2
	assert.Equal(t, decisive, won)
	assert.Equal(t, decisive, lost)
	assert.Equal(t, 2*draws, drawn)
	assert.Equal(t, gf, ga)
	assert.Equal(t, 3*decisive+2*draws, points, "3 points per decisive match, 2 per draw")
}

func TestBuildTableDeterministic(t *testing.T) {
	matches := []models.Match{
		endedMatch("team-a", "team-b", 2, 1, 1),
		endedMatch("team-b", "team-c", 0, 0, 2),
		endedMatch("team-c", "team-a", 1, 3, 3),
	}

	first := BuildTable(testLeague, testSeason, matches, testNames)
	second := BuildTable(testLeague, testSeason, matches, testNames)
	assert.Equal(t, first, second, "rebuilding from the same matches must give the same table")
}

func TestBuildTableSkipsNonCountingMatches(t *testing.T) {
	live := endedMatch("team-a", "team-c", 9, 0, 4)
	live.Status = models.StatusLive

	standalone := endedMatch("team-b", "team-c", 5, 0, 5)
	standalone.Kind = models.MatchKindStandalone
	standalone.HomeTeamID = nil
	standalone.AwayTeamID = nil
	standalone.HomeTeamName = "Brentford"
	standalone.AwayTeamName = "Chelsea"

	malformed := endedMatch("team-a", "team-b", 1, 0, 6)
	malformed.AwayTeamID = nil

	matches := []models.Match{
		endedMatch("team-a", "team-b", 1, 1, 1),
		live,
		standalone,
		malformed,
	}

	rows := BuildTable(testLeague, testSeason, matches, testNames)
	require.Len(t, rows, 2, "only the ended leagued match with both teams counts")

	a := rowFor(t, rows, "team-a")
	assert.Equal(t, 1, a.Played)
	assert.Equal(t, 1, a.GoalsFor)
}

func TestBuildTableEmptyScope(t *testing.T) {
	rows := BuildTable(testLeague, testSeason, nil, testNames)
	assert.Empty(t, rows)
}

func TestRankTableTieBreakByName(t *testing.T) {
	// identical records: alphabetical team name decides
	rows := []models.Standing{
		{TeamID: "team-c", Played: 1, Won: 1, GoalsFor: 2, GoalsAgainst: 1, Points: 3},
		{TeamID: "team-a", Played: 1, Won: 1, GoalsFor: 2, GoalsAgainst: 1, Points: 3},
	}
	RankTable(rows, testNames)

	assert.Equal(t, "team-a", rows[0].TeamID, "Arsenal before Chelsea")
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)
}

func TestRankTableTieBreakByGoalsFor(t *testing.T) {
	rows := []models.Standing{
		{TeamID: "team-a", Points: 3, GoalsFor: 1, GoalsAgainst: 0},
		{TeamID: "team-b", Points: 3, GoalsFor: 4, GoalsAgainst: 3},
	}
	RankTable(rows, testNames)

	// same points, same goal difference: more goals scored ranks higher
	assert.Equal(t, "team-b", rows[0].TeamID)
}

func TestFormWindowKeepsMostRecentResults(t *testing.T) {
	var matches []models.Match
	// team-a: W W W W W W D, oldest first
	for day := 1; day <= 6; day++ {
		matches = append(matches, endedMatch("team-a", "team-b", 1, 0, day))
	}
	matches = append(matches, endedMatch("team-a", "team-b", 0, 0, 7))

	rows := BuildTable(testLeague, testSeason, matches, testNames)
	a := rowFor(t, rows, "team-a")

	require.Len(t, a.Form, models.FormWindow)
	assert.Equal(t, "WWWWD", a.Form, "last rune is the most recent result")
	assert.True(t, strings.HasSuffix(a.Form, "D"))
}

func TestApplyResultToRowPoints(t *testing.T) {
	var row models.Standing
	applyResultToRow(&row, 2, 0) // win
	applyResultToRow(&row, 1, 1) // draw
	applyResultToRow(&row, 0, 3) // loss

	assert.Equal(t, 3, row.Played)
	assert.Equal(t, 1, row.Won)
	assert.Equal(t, 1, row.Drawn)
	assert.Equal(t, 1, row.Lost)
	assert.Equal(t, 4, row.Points)
	assert.Equal(t, "WDL", row.Form)
	assert.Equal(t, -1, row.Diff())
}

func TestBuildTableReflectsMatchDeletion(t *testing.T) {
	matches := []models.Match{
		endedMatch("team-a", "team-b", 2, 1, 1),
		endedMatch("team-b", "team-c", 0, 0, 2),
		endedMatch("team-c", "team-a", 1, 3, 3),
	}

	before := rowFor(t, BuildTable(testLeague, testSeason, matches, testNames), "team-b")

	// drop the A-B match, as the admin delete path does before a rebuild
	after := BuildTable(testLeague, testSeason, matches[1:], testNames)
	b := rowFor(t, after, "team-b")
	assert.Equal(t, before.Played-1, b.Played)
	assert.Equal(t, before.Lost-1, b.Lost)
	assert.Equal(t, before.GoalsFor-1, b.GoalsFor)

	// team-a keeps only the contribution of its remaining match
	a := rowFor(t, after, "team-a")
	assert.Equal(t, 1, a.Played)
	assert.Equal(t, 3, a.Points)
}
