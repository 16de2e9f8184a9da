package models

// Country groups leagues and teams by federation
type Country struct {
	ID      string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name    string `json:"name" gorm:"uniqueIndex;not null"`
	Code    string `json:"code" gorm:"type:varchar(3);uniqueIndex"` // ISO-ish, e.g. "RWA"
	FlagURL string `json:"flag_url"`

	Leagues []League `json:"leagues,omitempty" gorm:"foreignKey:CountryID"`

	Timestamps
}
