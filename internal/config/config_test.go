package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(writeYAML(t, "mode: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 5*time.Second, cfg.WriteWait)
	assert.Equal(t, 5, cfg.Rooms.IDAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Rooms.EmptyTTL)
	assert.Equal(t, 2, cfg.Breakout.MinRooms)
	assert.Equal(t, 20, cfg.Breakout.MaxRooms)
	assert.Equal(t, "kick", cfg.SlowConsumer)
	assert.Equal(t, "meet:audit", cfg.Audit.RedisKey)
	assert.Empty(t, cfg.ICEServers)
}

func TestLoadFileNested(t *testing.T) {
	cfg, err := LoadFile(writeYAML(t, `
mode: release
secret: s3cret
port: 9000
rooms:
  id_attempts: 3
  empty_ttl: 90s
chat:
  rate_limit: 2
  rate_interval: 1s
  profanity_words: [darn]
ice_servers:
  - urls: ["turn:turn.example.org:3478"]
    username: u
    credential: p
audit:
  redis_addr: localhost:6379
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 3, cfg.Rooms.IDAttempts)
	assert.Equal(t, 90*time.Second, cfg.Rooms.EmptyTTL)
	assert.Equal(t, 2, cfg.Chat.RateLimit)
	assert.Equal(t, time.Second, cfg.Chat.RateInterval)
	assert.Equal(t, []string{"darn"}, cfg.Chat.ProfanityWords)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"turn:turn.example.org:3478"}, cfg.ICEServers[0].URLs)
	assert.Equal(t, "u", cfg.ICEServers[0].Username)
	assert.Equal(t, "localhost:6379", cfg.Audit.RedisAddr)
}

func TestLoadFileReleaseNeedsSecret(t *testing.T) {
	_, err := LoadFile(writeYAML(t, "mode: release\n"))
	assert.Error(t, err)
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	t.Setenv("MEET_MODE", "debug")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
}
