package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"slm/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/abc/token", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		var body map[string]uint
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, uint(7), body["user_id"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-1","expires_at":"2026-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "secret", logger.Nop())
	tok, err := c.VideoToken(context.Background(), "abc", 7)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.Token)
	assert.Equal(t, 2026, tok.ExpiresAt.Year())
}

func TestVideoTokenErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", logger.Nop()).VideoToken(context.Background(), "abc", 1)
	assert.ErrorContains(t, err, "403")
}

func TestDisabledClient(t *testing.T) {
	c := New("", "", logger.Nop())
	assert.False(t, c.Enabled())
	_, err := c.VideoToken(context.Background(), "abc", 1)
	assert.ErrorIs(t, err, ErrDisabled)
}
