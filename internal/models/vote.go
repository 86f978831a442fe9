package models

import "time"

// Vote model - one user's current stance on one post. A missing row means no vote.
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"not null;uniqueIndex:idx_votes_post_user" json:"post_id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_votes_post_user" json:"user_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	Vote *int `json:"vote"`
}
