package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	t.Run("Reads yaml and fills defaults", func(t *testing.T) {
		// Given: a config file with only some keys set
		path := filepath.Join(t.TempDir(), "config.yml")
		content := "log-level: debug\nredis:\n  host: cache\njwt:\n  secret-key: secret\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: loading it
		conf := MustLoad(path)

		// Then: file values and defaults are both present
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "8080", conf.SocketPort)
		assert.Equal(t, "secret", conf.JWT.SecretKey)
		assert.Equal(t, 24*time.Hour, conf.JWT.TTL)
		assert.Equal(t, 20, conf.HistoryLimit)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("http-port: \"1000\"\n"), 0o600))
		t.Setenv("HTTP_PORT", "2000")

		conf := MustLoad(path)

		assert.Equal(t, "2000", conf.HTTPPort)
	})

	t.Run("Panics on a missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
