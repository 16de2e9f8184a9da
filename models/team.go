package models

type Team struct {
	ID        string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string  `json:"name" gorm:"not null"`
	Slug      string  `json:"slug" gorm:"uniqueIndex;not null"`
	ShortName string  `json:"short_name" gorm:"type:varchar(8)"` // e.g. "APR"
	SearchKey string  `json:"-" gorm:"index"`                    // ASCII-folded name for search
	LeagueID  *string `json:"league_id,omitempty" gorm:"index"`
	CountryID string  `json:"country_id" gorm:"index;not null"`
	LogoURL   string  `json:"logo_url"`

	League  *League `json:"league,omitempty" gorm:"foreignKey:LeagueID"`
	Country Country `json:"country,omitempty" gorm:"foreignKey:CountryID"`

	Timestamps
}
