package models

import "time"

const (
	LanguageEnglish = "en"
	LanguageBangla  = "bn"

	PostTypeProblem = "problem"
	PostTypeSharing = "sharing"
)

type Post struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"not null" json:"body"`
	Excerpt   string    `json:"excerpt"`
	Language  string    `gorm:"size:2;not null;default:en" json:"language"`
	Type      string    `gorm:"size:16;not null;default:sharing" json:"type"`
	AuthorID  int       `gorm:"not null;index" json:"author_id"`
	User      User      `gorm:"foreignKey:AuthorID" json:"user"`
	NetVotes  int       `gorm:"not null;default:0" json:"net_votes"`
	Published bool      `gorm:"not null;default:true" json:"published"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Language string `json:"language"`
	Type     string `json:"type"`
}
