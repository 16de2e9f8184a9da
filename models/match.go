package models

import (
	"errors"
	"time"
)

// Match kinds. A leagued match references real teams and a league and
// feeds the standings engine; a standalone match carries free-text
// names (friendlies, cup finals entered ad hoc) and never does.
const (
	MatchKindLeagued    = "leagued"
	MatchKindStandalone = "standalone"
)

const (
	StatusNotStarted = "not_started"
	StatusLive       = "live"
	StatusHalftime   = "halftime"
	StatusEnded      = "ended"
	StatusPostponed  = "postponed"
	StatusCanceled   = "canceled"
)

// StatusDescriptor is the single source of display metadata per status.
type StatusDescriptor struct {
	Label      string `json:"label"`
	StyleClass string `json:"style_class"`
}

var StatusDescriptors = map[string]StatusDescriptor{
	StatusNotStarted: {Label: "Upcoming", StyleClass: "status-upcoming"},
	StatusLive:       {Label: "Live", StyleClass: "status-live"},
	StatusHalftime:   {Label: "HT", StyleClass: "status-live"},
	StatusEnded:      {Label: "FT", StyleClass: "status-ended"},
	StatusPostponed:  {Label: "Postponed", StyleClass: "status-off"},
	StatusCanceled:   {Label: "Canceled", StyleClass: "status-off"},
}

var ErrSameTeam = errors.New("home and away team must differ")

type Match struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Kind string `json:"kind" gorm:"type:varchar(16);not null;default:'leagued';check:kind IN ('leagued','standalone')"`

	// Leagued variant: references (required when kind = leagued)
	HomeTeamID *string `json:"home_team_id,omitempty" gorm:"index"`
	AwayTeamID *string `json:"away_team_id,omitempty" gorm:"index"`
	LeagueID   *string `json:"league_id,omitempty" gorm:"index"`

	// Standalone variant: free-text names (required when kind = standalone)
	HomeTeamName string `json:"home_team_name,omitempty"`
	AwayTeamName string `json:"away_team_name,omitempty"`
	LeagueName   string `json:"league_name,omitempty"`

	Season    string    `json:"season" gorm:"index;not null"` // year string, e.g. "2024"
	Round     string    `json:"round,omitempty"`
	MatchDate time.Time `json:"match_date" gorm:"index;not null"`

	Status            string     `json:"status" gorm:"type:varchar(16);default:'not_started';index"`
	LiveStartTime     *time.Time `json:"live_start_time,omitempty"`
	HalfTimeStartTime *time.Time `json:"half_time_start_time,omitempty"`
	CurrentMinute     int        `json:"current_minute" gorm:"default:0"`

	HomeScore int `json:"home_score" gorm:"default:0"`
	AwayScore int `json:"away_score" gorm:"default:0"`

	HomeTeam *Team        `json:"home_team,omitempty" gorm:"foreignKey:HomeTeamID"`
	AwayTeam *Team        `json:"away_team,omitempty" gorm:"foreignKey:AwayTeamID"`
	League   *League      `json:"league,omitempty" gorm:"foreignKey:LeagueID"`
	Events   []MatchEvent `json:"events,omitempty" gorm:"foreignKey:MatchID"`

	// Derived for responses, never stored
	LiveMinute       int               `json:"live_minute,omitempty" gorm:"-"`
	StatusDescriptor *StatusDescriptor `json:"status_descriptor,omitempty" gorm:"-"`

	Timestamps
}

// IsLeagued reports whether this match feeds the standings engine.
func (m *Match) IsLeagued() bool {
	return m.Kind == MatchKindLeagued
}

// InPlay covers both halves and the break.
func (m *Match) InPlay() bool {
	return m.Status == StatusLive || m.Status == StatusHalftime
}

// Validate enforces the per-kind required fields.
func (m *Match) Validate() error {
	if m.Season == "" {
		return errors.New("season is required")
	}
	switch m.Kind {
	case MatchKindLeagued:
		if m.HomeTeamID == nil || m.AwayTeamID == nil || m.LeagueID == nil {
			return errors.New("leagued match requires home_team_id, away_team_id and league_id")
		}
		if *m.HomeTeamID == *m.AwayTeamID {
			return ErrSameTeam
		}
	case MatchKindStandalone:
		if m.HomeTeamName == "" || m.AwayTeamName == "" {
			return errors.New("standalone match requires home_team_name and away_team_name")
		}
	default:
		return errors.New("unknown match kind")
	}
	if _, ok := StatusDescriptors[m.Status]; m.Status != "" && !ok {
		return errors.New("unknown match status")
	}
	return nil
}

// Decorate fills the derived response-only fields.
func (m *Match) Decorate(liveMinute int) {
	m.LiveMinute = liveMinute
	if d, ok := StatusDescriptors[m.Status]; ok {
		m.StatusDescriptor = &d
	}
}
