package models

type League struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string `json:"name" gorm:"not null"`
	Slug      string `json:"slug" gorm:"uniqueIndex;not null"`
	CountryID string `json:"country_id" gorm:"index;not null"`
	LogoURL   string `json:"logo_url"`
	Priority  int    `json:"priority" gorm:"default:0"` // higher shows first on the site
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	Country Country `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Teams   []Team  `json:"teams,omitempty" gorm:"foreignKey:LeagueID"`

	Timestamps
}
