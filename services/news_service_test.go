package services

import (
	"testing"

	"gukina-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNewsPatchLeavesUnsubmittedFields(t *testing.T) {
	article := models.News{
		Excerpt:  "old excerpt",
		Content:  "old content",
		LeagueID: strPtr("league-1"),
	}

	applyNewsPatch(&article, map[string][]string{
		"content": {"new content"},
	})

	assert.Equal(t, "new content", article.Content)
	assert.Equal(t, "old excerpt", article.Excerpt)
	require.NotNil(t, article.LeagueID)
	assert.Equal(t, "league-1", *article.LeagueID)
}

func TestApplyNewsPatchClearsSubmittedEmptyFields(t *testing.T) {
	article := models.News{
		Excerpt:  "old excerpt",
		LeagueID: strPtr("league-1"),
		TeamID:   strPtr("team-1"),
	}

	// submitted-but-empty means "clear", so an article can be blanked
	// or detached from its league and team
	applyNewsPatch(&article, map[string][]string{
		"excerpt":   {""},
		"league_id": {""},
		"team_id":   {""},
	})

	assert.Empty(t, article.Excerpt)
	assert.Nil(t, article.LeagueID)
	assert.Nil(t, article.TeamID)
}

func TestApplyNewsPatchSetsReferences(t *testing.T) {
	var article models.News

	applyNewsPatch(&article, map[string][]string{
		"league_id": {"league-2"},
		"team_id":   {"team-2"},
	})

	require.NotNil(t, article.LeagueID)
	assert.Equal(t, "league-2", *article.LeagueID)
	require.NotNil(t, article.TeamID)
	assert.Equal(t, "team-2", *article.TeamID)
}
