package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/lectern/internal/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, SourceTypeREST, cfg.Server.Type)
	assert.Equal(t, "http://localhost:8000/api", cfg.Server.URL)
	assert.Equal(t, 1, cfg.Cache.FetchConcurrency)
	assert.True(t, cfg.Cache.WarmOnStart)
	assert.Equal(t, def.Logging, cfg.Logging)
	assert.True(t, cfg.IsConfigured())
}

func TestSaveThenLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.URL = "https://api.example.edu"
	cfg.Server.Email = "ada@example.edu"
	cfg.Cache.FetchConcurrency = 4
	cfg.Viewer.Command = "mpv"
	cfg.Viewer.Args = []string{"--fs"}

	require.NoError(t, saveConfig(cfg, dir))
	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	loaded, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, 4, loaded.Cache.FetchConcurrency)
	assert.Equal(t, "mpv", loaded.Viewer.Command)
	assert.Equal(t, []string{"--fs"}, loaded.Viewer.Args)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("LECTERN_SERVER_URL", "http://staging:9000/api")
	t.Setenv("LECTERN_CACHE_FETCH_CONCURRENCY", "3")

	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://staging:9000/api", cfg.Server.URL)
	assert.Equal(t, 3, cfg.Cache.FetchConcurrency)
}

func TestLoadConfig_ClampsConcurrency(t *testing.T) {
	t.Setenv("LECTERN_CACHE_FETCH_CONCURRENCY", "0")

	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Cache.FetchConcurrency)
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [oops"), 0644))

	_, err := loadConfig(dir)
	assert.Error(t, err)
}

func TestIsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Type = SourceTypeBolt
	cfg.Server.BoltPath = ""
	assert.False(t, cfg.IsConfigured())

	cfg.Server.BoltPath = "/tmp/catalog.db"
	assert.True(t, cfg.IsConfigured())
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lectern.log")

	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)
	logger.Debug("hello", "owner", "t1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"owner":"t1"`)
	assert.Contains(t, string(data), fmt.Sprintf(`"pid":%d`, os.Getpid()))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestLauncher_ConfiguredViewer(t *testing.T) {
	l := NewLauncher("mpv", []string{"--fs"}, NullLogger())
	var got *exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		got = cmd
		return nil
	}

	err := l.Open(domain.Content{ID: 1, Type: domain.ContentTypeVideo, FileURL: "https://cdn/1.mp4"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"mpv", "--fs", "https://cdn/1.mp4"}, got.Args)
}

func TestLauncher_NoFileURL(t *testing.T) {
	l := NewLauncher("", nil, NullLogger())
	assert.ErrorIs(t, l.Open(domain.Content{ID: 1}), ErrNoFileURL)
}

func TestLauncher_FallsBackToSystemDefault(t *testing.T) {
	l := NewLauncher("", nil, NullLogger())
	l.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	var got *exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		got = cmd
		return nil
	}

	// unknown content type has no candidates anywhere
	err := l.Open(domain.Content{ID: 1, Type: "AUDIO", FileURL: "https://cdn/1.mp3"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://cdn/1.mp3", got.Args[len(got.Args)-1])
}

func TestDefaultOpenCommand(t *testing.T) {
	assert.Equal(t, []string{"open", "u"}, defaultOpenCommand("darwin", "u").Args)
	assert.Equal(t, []string{"xdg-open", "u"}, defaultOpenCommand("linux", "u").Args)
	assert.Equal(t, []string{"cmd", "/c", "start", "", "u"}, defaultOpenCommand("windows", "u").Args)
}
