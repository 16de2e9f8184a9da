package models

import "time"

// News is an editorial article, optionally pinned to a league or team.
type News struct {
	ID       string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title    string  `json:"title" gorm:"not null"`
	Slug     string  `json:"slug" gorm:"uniqueIndex;not null"`
	Excerpt  string  `json:"excerpt" gorm:"type:text"`
	Content  string  `json:"content" gorm:"type:text"`
	ImageURL string  `json:"image_url"`
	LeagueID *string `json:"league_id,omitempty" gorm:"index"`
	TeamID   *string `json:"team_id,omitempty" gorm:"index"`

	// Publishing state, same lifecycle as everywhere else on the site:
	// draft | scheduled | published
	Status      string     `json:"status" gorm:"default:'draft'"`
	PublishAt   *time.Time `json:"publish_at,omitempty"` // only used if scheduled
	PublishedAt *time.Time `json:"published_at,omitempty" gorm:"index"`

	League *League `json:"league,omitempty" gorm:"foreignKey:LeagueID"`
	Team   *Team   `json:"team,omitempty" gorm:"foreignKey:TeamID"`

	Timestamps
}
