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
	t.Run("Reads the file and fills defaults", func(t *testing.T) {
		// Given: a config that only sets a few keys
		path := filepath.Join(t.TempDir(), "config.yml")
		content := "log-level: debug\nrules:\n  board-layout: random\nsession:\n  turn-timeout: 45s\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: it is loaded
		conf := MustLoad(path)

		// Then: set keys win and the rest fall back to defaults
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "random", conf.Rules.BoardLayout)
		assert.Equal(t, 45*time.Second, conf.Session.TurnTimeout)
		assert.Equal(t, 10, conf.Rules.VictoryPoints)
		assert.Equal(t, 24*time.Hour, conf.Redis.GameTTL)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  victory-points: 10\n"), 0o600))
		t.Setenv("RULES_VICTORY_POINTS", "12")

		assert.Equal(t, 12, MustLoad(path).Rules.VictoryPoints)
	})

	t.Run("Missing file panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
		})
	})
}
