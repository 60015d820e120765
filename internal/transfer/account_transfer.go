package transfer

import "time"

// ConnectAccount carries everything the registry needs to upsert a
// connection. Credentials arrive in plaintext from the OAuth boundary and
// are encrypted before they are stored.
type ConnectAccount struct {
	Platform       string    `json:"platform"`
	AccountID      string    `json:"account_id"`
	AccountName    string    `json:"account_name"`
	ProfilePicture string    `json:"profile_picture"`
	FollowersCount int64     `json:"followers_count"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	// ExpiresIn is the OAuth expires_in seconds form; used when
	// TokenExpiresAt is not supplied.
	ExpiresIn int `json:"expires_in"`
}

// Credentials is the decrypted token pair handed to the dispatch path only.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}
