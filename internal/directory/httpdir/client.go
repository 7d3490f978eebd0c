// Package httpdir is the HTTP client for a remote identity-directory
// service speaking the directoryserver JSON API.
package httpdir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rolelink/rolelink/internal/directory"
	"github.com/rolelink/rolelink/internal/model"
)

// Client talks to a remote directory service
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ directory.Directory = (*Client)(nil)

// New creates a directory client for the given base URL. The token is sent
// as the Authorization header on every request; empty means no auth.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// lookupResponse mirrors the directory service's GET payload
type lookupResponse struct {
	DiscordTag string `json:"discord_tag"`
}

// storeRequest mirrors the directory service's POST payload
type storeRequest struct {
	SteamID    uint64 `json:"steam_id"`
	DiscordTag string `json:"discord_tag"`
}

func (c *Client) Lookup(ctx context.Context, id model.PlayerID) (model.IdentityTag, error) {
	url := fmt.Sprintf("%s/steamid/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", model.ErrLinkNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", model.ErrUnauthorized
	default:
		return "", fmt.Errorf("%w: lookup returned status %d", model.ErrDirectoryUnavailable, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding lookup response: %w", err)
	}
	if body.DiscordTag == "" {
		return "", model.ErrLinkNotFound
	}
	return model.IdentityTag(body.DiscordTag), nil
}

func (c *Client) Store(ctx context.Context, id model.PlayerID, tag model.IdentityTag) error {
	payload, err := json.Marshal(storeRequest{
		SteamID:    uint64(id),
		DiscordTag: string(tag),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ErrUnauthorized
	default:
		return fmt.Errorf("%w: store returned status %d", model.ErrDirectoryUnavailable, resp.StatusCode)
	}
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
}
