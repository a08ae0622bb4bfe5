package youtube

import "errors"

// ChannelIdentity is the proven identity of a channel owner, derived from one
// authorization-code exchange. Immutable once built.
type ChannelIdentity struct {
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	CustomURL    string `json:"custom_url,omitempty"`
}

var (
	// ErrBadAuthCode means Google rejected the request with a 400: the
	// caller supplied an invalid or expired authorization code.
	ErrBadAuthCode = errors.New("invalid or expired authorization code")

	// ErrNoChannel means the Google account has no YouTube channel.
	ErrNoChannel = errors.New("no channel found for this identity")
)

type pageInfo struct {
	TotalResults int `json:"totalResults"`
}

type channelSnippet struct {
	Title     string `json:"title"`
	CustomURL string `json:"customUrl"`
}

type channelItem struct {
	ID      string         `json:"id"`
	Snippet channelSnippet `json:"snippet"`
}

type channelListResponse struct {
	PageInfo pageInfo      `json:"pageInfo"`
	Items    []channelItem `json:"items"`
}
