package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
		{"bad-scheme", "http://localhost:6379", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNewUnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}
	_, err := New(t.Context(), "redis://localhost:59999", "slm:")
	assert.Error(t, err)
}

func TestKeyPrefix(t *testing.T) {
	c := &Cache{prefix: "slm:"}
	assert.Equal(t, "slm:quiz:1", c.key("quiz:1"))
}
