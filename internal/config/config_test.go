package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, args, err := Load("triviatrip", nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	assert.Equal(t, "triviatrip.db", cfg.Database.Path)
	assert.Equal(t, "https://opentdb.com/api.php", cfg.API.BaseURL)
	assert.Equal(t, 5001*time.Millisecond, cfg.API.RateLimitDelay)
	assert.Equal(t, 30, cfg.Queue.InitialLoadCount)
	assert.Equal(t, 20, cfg.Queue.BackgroundLoadCount)
	assert.Equal(t, 10, cfg.Queue.MinBufferThreshold)
	assert.Equal(t, 10, cfg.Queue.DatabaseLoadCount)
	assert.Equal(t, 10, cfg.Game.QuestionsPerSession)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triviatrip.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: from-file.db
game:
  questions_per_session: 5
log:
  level: warn
api:
  timeout: 3s
`), 0o644))

	t.Setenv("TRIVIATRIP_GAME__QUESTIONS_PER_SESSION", "7")
	t.Setenv("TRIVIATRIP_LOG__LEVEL", "debug")

	cfg, args, err := Load("triviatrip", []string{"--config", path, "--log.level", "error", "serve"})
	require.NoError(t, err)

	assert.Equal(t, []string{"serve"}, args)
	assert.Equal(t, "from-file.db", cfg.Database.Path, "file overrides defaults")
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 7, cfg.Game.QuestionsPerSession, "environment overrides file")
	assert.Equal(t, "error", cfg.Log.Level, "set flags override environment")
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "bad level", args: []string{"--log.level", "loud"}},
		{name: "too many per request", args: []string{"--queue.initial_load_count", "51"}},
		{name: "no questions per game", args: []string{"--game.questions_per_session", "0"}},
		{name: "bad url", args: []string{"--api.base_url", "not a url"}},
		{name: "bad addr", args: []string{"--server.addr", "nowhere"}},
		{name: "unknown flag", args: []string{"--nope"}},
		{name: "missing file", args: []string{"--config", "/does/not/exist.yaml"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Load("triviatrip", tc.args)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Help(t *testing.T) {
	_, _, err := Load("triviatrip", []string{"--help"})
	assert.True(t, errors.Is(err, ErrHelp))
	assert.Contains(t, Usage("triviatrip"), "database.path")
}
