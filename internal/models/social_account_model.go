package models

import "time"

type SocialAccount struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Platform       string    `db:"platform" json:"platform"`
	AccountID      string    `db:"account_id" json:"account_id"`
	AccountName    string    `db:"account_name" json:"account_name"`
	ProfilePicture string    `db:"profile_picture_url" json:"profile_picture"`
	FollowersCount int64     `db:"followers_count" json:"followers_count"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	AccountStatus  string    `db:"account_status" json:"account_status"`
	LastSyncAt     time.Time `db:"last_sync_at" json:"last_sync_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

const (
	AccountStatusConnected    = "connected"
	AccountStatusDisconnected = "disconnected"
)

// NoSecret marks a secret column that holds no credential, as opposed to
// an encrypted empty string.
const NoSecret = ""

// Redact clears the encrypted secret columns before the account leaves the
// service layer. Read-side callers never see credential material.
func (sa *SocialAccount) Redact() {
	sa.AccessToken = NoSecret
	sa.RefreshToken = NoSecret
}
