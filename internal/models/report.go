package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	TargetPost    = "post"
	TargetComment = "comment"

	DefaultReportReason = "No reason provided"
)

// Report is one user's flag of one post or comment. Rows are append-only.
type Report struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	TargetType     string    `gorm:"size:16;not null;index:idx_reports_target" json:"target_type"`
	TargetID       int       `gorm:"not null;index:idx_reports_target" json:"target_id"`
	ReporterUserID int       `gorm:"not null;index" json:"reporter_user_id"`
	Reason         string    `gorm:"not null" json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateReportRequest struct {
	TargetType string   `json:"targetType"`
	TargetID   TargetID `json:"targetId"`
	Reason     string   `json:"reason"`
}

// TargetID accepts either a JSON string ("12") or number (12). Zero means absent.
type TargetID int

func (t *TargetID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = 0
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*t = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		// Unparseable ids are treated as missing so the caller gets a 400.
		*t = 0
		return nil
	}
	*t = TargetID(n)
	return nil
}

// FlaggedPost is a post annotated with the number of reports against it.
type FlaggedPost struct {
	Post
	ReportCount int64 `json:"report_count"`
}

// FlaggedComment is a comment annotated with the number of reports against it.
type FlaggedComment struct {
	Comment
	ReportCount int64 `json:"report_count"`
}

// FlaggedContent is the moderation queue view.
type FlaggedContent struct {
	Posts    []FlaggedPost    `json:"posts"`
	Comments []FlaggedComment `json:"comments"`
}
