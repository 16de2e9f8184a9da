package models

// FormWindow is how many recent results a standing row retains.
// Form is oldest-first: the LAST rune is the most recent result.
const FormWindow = 5

// Standing is one team's aggregate row in a league+season table.
// At most one row per (league, season, team).
type Standing struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	LeagueID string `json:"league_id" gorm:"uniqueIndex:idx_standing_scope_team;not null"`
	Season   string `json:"season" gorm:"uniqueIndex:idx_standing_scope_team;not null"`
	TeamID   string `json:"team_id" gorm:"uniqueIndex:idx_standing_scope_team;not null"`

	Position     int    `json:"position"`
	Played       int    `json:"played" gorm:"default:0"`
	Won          int    `json:"won" gorm:"default:0"`
	Drawn        int    `json:"drawn" gorm:"default:0"`
	Lost         int    `json:"lost" gorm:"default:0"`
	GoalsFor     int    `json:"goals_for" gorm:"default:0"`
	GoalsAgainst int    `json:"goals_against" gorm:"default:0"`
	Points       int    `json:"points" gorm:"default:0"`
	Form         string `json:"form" gorm:"type:varchar(8)"` // e.g. "WDLWW", oldest-first
	IsLive       bool   `json:"is_live" gorm:"default:false"`

	Team *Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`

	// Derived at read time, never stored
	GoalDifference int `json:"goal_difference" gorm:"-"`

	Timestamps
}

// Diff is goalsFor - goalsAgainst, the first tie-break after points.
func (s *Standing) Diff() int {
	return s.GoalsFor - s.GoalsAgainst
}

// AppendForm records one result ('W', 'D' or 'L'), keeping the window.
func (s *Standing) AppendForm(r byte) {
	s.Form += string(r)
	if len(s.Form) > FormWindow {
		s.Form = s.Form[len(s.Form)-FormWindow:]
	}
}
