package models

import "time"

// RateLimitWindow is a fixed 60 minute admission window. WindowStart is the
// UTC hour bucket the first request fell into; the unique key
// (user_id, platform, action_type, window_start) makes lazy creation a plain
// upsert. Old windows are pruned by a retention job, never read again.
type RateLimitWindow struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Platform      string    `db:"platform" json:"platform"`
	ActionType    string    `db:"action_type" json:"action_type"`
	WindowStart   time.Time `db:"window_start" json:"window_start"`
	RequestsCount int       `db:"requests_count" json:"requests_count"`
	MaxRequests   int       `db:"max_requests" json:"max_requests"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
