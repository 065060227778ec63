// Package media talks to the external media service that issues playback
// tokens for page videos.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slm/logger"

	"github.com/go-resty/resty/v2"
)

// ErrDisabled is returned when no media service is configured.
var ErrDisabled = errors.New("media service not configured")

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// New returns a client for baseURL. An empty baseURL yields a client whose
// calls fail with ErrDisabled.
func New(baseURL, apiKey string, baseLog *logger.Logger) *Client {
	c := &Client{log: baseLog.With("client", "media")}
	if strings.TrimSpace(baseURL) == "" {
		return c
	}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("X-Api-Key", apiKey).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return c
}

func (c *Client) Enabled() bool { return c != nil && c.http != nil }

// VideoToken asks the media service for a short-lived playback token.
func (c *Client) VideoToken(ctx context.Context, videoID string, userID uint) (*Token, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	var out Token
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("videoID", videoID).
		SetBody(map[string]interface{}{"user_id": userID}).
		SetResult(&out).
		Post("/videos/{videoID}/token")
	if err != nil {
		return nil, fmt.Errorf("request video token: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		c.log.Warn("media service rejected token request", "video_id", videoID, "status", resp.StatusCode())
		return nil, fmt.Errorf("media service returned %d", resp.StatusCode())
	}
	if out.Token == "" {
		return nil, errors.New("media service returned an empty token")
	}
	return &out, nil
}
