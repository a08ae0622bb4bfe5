// Package youtube performs the outbound Google OAuth2 and YouTube Data API
// calls that turn an authorization code into a proven channel identity.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/reactroom/reactroom/internal/config"
)

// A Google account can own several channels; only the first listed channel is
// claimed. Known limitation: additional channels are ignored.
const claimedChannelIndex = 0

const maxResponseBytes = 1 << 20

// Client exchanges authorization codes and fetches channel info from Google.
// It keeps no per-call state; one instance is shared by all requests.
type Client struct {
	oauth          *oauth2.Config
	httpClient     *http.Client
	channelInfoURL string
	logger         *slog.Logger
}

// NewClient creates a client for the configured Google endpoints. The given
// http.Client carries the process-wide outbound timeout.
func NewClient(log *slog.Logger, httpClient *http.Client, cfg config.GoogleConfig) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: cfg.OAuth2TokenURL,
				// Credentials travel in the form body, as Google expects.
				AuthStyle: oauth2.AuthStyleInParams,
			},
			// "postmessage" is the fixed redirect marker for codes obtained
			// through the Google Identity Services popup flow.
			RedirectURL: "postmessage",
		},
		httpClient:     httpClient,
		channelInfoURL: cfg.ChannelInfoURL,
		logger:         log.With(slog.String("client", "youtube")),
	}
}

// ExchangeCode swaps the authorization code for an access token at the Google
// token endpoint. The token is short-lived and used for a single follow-up
// call; it is never persisted.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusBadRequest {
			return "", fmt.Errorf("%w: %s", ErrBadAuthCode, retrieveErr.ErrorCode)
		}
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	return token.AccessToken, nil
}

// FetchChannelIdentity calls the YouTube channels endpoint with the access
// token and derives the channel identity from the first listed channel.
func (c *Client) FetchChannelIdentity(ctx context.Context, accessToken string) (ChannelIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.channelInfoURL, nil)
	if err != nil {
		return ChannelIdentity{}, fmt.Errorf("build channel info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ChannelIdentity{}, fmt.Errorf("channel info request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ChannelIdentity{}, fmt.Errorf("read channel info response: %w", err)
	}
	if resp.StatusCode == http.StatusBadRequest {
		return ChannelIdentity{}, fmt.Errorf("%w: channel info request rejected", ErrBadAuthCode)
	}
	if resp.StatusCode != http.StatusOK {
		return ChannelIdentity{}, fmt.Errorf("channel info failed: status=%d", resp.StatusCode)
	}

	var list channelListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return ChannelIdentity{}, fmt.Errorf("decode channel info: %w", err)
	}
	if list.PageInfo.TotalResults == 0 || len(list.Items) == 0 {
		return ChannelIdentity{}, ErrNoChannel
	}
	if len(list.Items) > 1 {
		c.logger.Debug("account owns multiple channels, claiming the first",
			slog.Int("count", len(list.Items)))
	}

	item := list.Items[claimedChannelIndex]
	return ChannelIdentity{
		ChannelID:    item.ID,
		ChannelTitle: item.Snippet.Title,
		CustomURL:    item.Snippet.CustomURL,
	}, nil
}
