package domain

// IdentitySource tells which lookup strategy produced a ChannelIdentity.
type IdentitySource string

const (
	IdentitySourceMine     IdentitySource = "mine"
	IdentitySourceFallback IdentitySource = "fallback_id"
)

// ChannelIdentity is resolved once per request and never cached.
type ChannelIdentity struct {
	ChannelID string
	Source    IdentitySource
	Profile   *ChannelProfile
}

type ChannelProfile struct {
	ChannelID       string `json:"channelId"`
	Title           string `json:"title"`
	Thumbnail       string `json:"thumbnail"`
	SubscriberCount uint64 `json:"subscriberCount"`
	ViewCount       uint64 `json:"viewCount"`
	VideoCount      uint64 `json:"videoCount"`
}

// VideoPage is one page of the caller's own uploads.
type VideoPage struct {
	Items         []EntityMeta `json:"items"`
	NextPageToken string       `json:"nextPageToken"`
}
