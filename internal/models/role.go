package models

import "time"

const RoleModerator = "moderator"

// Role grants a capability to a user.
type Role struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_roles_user_name" json:"user_id"`
	Name      string    `gorm:"size:32;not null;uniqueIndex:idx_roles_user_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
