package models

import "errors"

const (
	EventGoal         = "goal"
	EventYellowCard   = "yellow_card"
	EventRedCard      = "red_card"
	EventSubstitution = "substitution"
	EventPenalty      = "penalty"
)

var eventTypes = map[string]bool{
	EventGoal:         true,
	EventYellowCard:   true,
	EventRedCard:      true,
	EventSubstitution: true,
	EventPenalty:      true,
}

// MatchEvent is one timeline entry of a match (goal, card, sub, penalty).
type MatchEvent struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MatchID    string  `json:"match_id" gorm:"index;not null"`
	Minute     int     `json:"minute" gorm:"not null"`
	Type       string  `json:"type" gorm:"type:varchar(16);not null"`
	TeamID     *string `json:"team_id,omitempty" gorm:"index"`
	PlayerName string  `json:"player_name"`
	Note       string  `json:"note,omitempty"`

	Timestamps
}

func (e *MatchEvent) Validate() error {
	if !eventTypes[e.Type] {
		return errors.New("unknown event type")
	}
	if e.Minute < 0 {
		return errors.New("minute must not be negative")
	}
	return nil
}
