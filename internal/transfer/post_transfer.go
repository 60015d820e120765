package transfer

import "time"

type PostCreation struct {
	AccountID      int64     `json:"account_id"`
	Content        string    `json:"content"`
	MediaAssetIDs  []int64   `json:"media_asset_ids"`
	Hashtags       []string  `json:"hashtags"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	BrandProfileID *int64    `json:"brand_profile_id,omitempty"`
	CreatedFrom    string    `json:"created_from,omitempty"`
}

// PostUpdate carries the editable fields of a still-scheduled post. Nil
// means "leave unchanged".
type PostUpdate struct {
	Content        *string    `json:"content,omitempty"`
	Hashtags       []string   `json:"hashtags,omitempty"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty"`
	BrandProfileID *int64     `json:"brand_profile_id,omitempty"`
}

// PostFilter narrows a listing. Nil fields are unset; Platform filters via
// the join to social_accounts.
type PostFilter struct {
	Status        *string
	Platform      *string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}
