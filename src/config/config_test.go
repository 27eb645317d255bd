package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetBlacklistTTL(t *testing.T) {
	t.Run("Should default to a day", func(t *testing.T) {
		t.Setenv("BLACKLIST_TTL", "")
		t.Setenv("LINK_TTL", "")
		assert.Equal(t, DEFAULT_BLACKLIST_TTL, GetBlacklistTTL())
	})

	t.Run("Should never expire before the tokens it revokes", func(t *testing.T) {
		t.Setenv("BLACKLIST_TTL", "24h")
		t.Setenv("LINK_TTL", "48h")
		assert.Equal(t, 48*time.Hour, GetBlacklistTTL())
	})

	t.Run("Should keep a longer configured value", func(t *testing.T) {
		t.Setenv("BLACKLIST_TTL", "72h")
		t.Setenv("LINK_TTL", "2h")
		assert.Equal(t, 72*time.Hour, GetBlacklistTTL())
	})
}

func TestTraEnabled(t *testing.T) {
	t.Setenv("TRA_ENABLED", "true")
	t.Setenv("TRA_URL", "")
	assert.False(t, TraEnabled())

	t.Setenv("TRA_URL", "https://tra.example.com")
	assert.True(t, TraEnabled())
}
