package models

import (
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	AccountID      int64          `db:"account_id" json:"account_id"`
	Content        string         `db:"content" json:"content"`
	Hashtags       pq.StringArray `db:"hashtags" json:"hashtags"`
	ScheduledFor   time.Time      `db:"scheduled_for" json:"scheduled_for"`
	Status         string         `db:"status" json:"status"` // scheduled, published, failed, cancelled
	BrandProfileID *int64         `db:"brand_profile_id" json:"brand_profile_id,omitempty"`
	CreatedFrom    string         `db:"created_from" json:"created_from"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id" json:"post_id"`
	AssetID      int64     `db:"asset_id" json:"asset_id"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
	PostStatusCancelled = "cancelled"
)

// TerminalStatus reports whether a status allows no further transition.
// Terminal posts stay queryable and deletable.
func TerminalStatus(status string) bool {
	switch status {
	case PostStatusPublished, PostStatusFailed, PostStatusCancelled:
		return true
	}
	return false
}
