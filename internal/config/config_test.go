package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"weather-acquisition-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"REPOSITORY_BACKEND", "HTTP_PORT", "DB_DRIVER", "STORE_TRACKING_TTL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(logger.New(io.Discard, logger.LevelCritical, "json"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendStore, cfg.Backend)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 30*time.Second, cfg.Store.TrackingTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadRemoteRequiresBaseURL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REPOSITORY_BACKEND", "remote")
	t.Setenv("REMOTE_BASE_URL", "")

	_, err := Load(logger.New(io.Discard, logger.LevelCritical, "json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMOTE_BASE_URL")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REPOSITORY_BACKEND", "carrier-pigeon")

	_, err := Load(logger.New(io.Discard, logger.LevelCritical, "json"))
	require.Error(t, err)
}

func TestLoadReadsDotEnvWithoutOverridingEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"# comment\nexport REMOTE_TIMEOUT=3s\nHTTP_PORT=9999\nCORS_ALLOWED_ORIGINS=\"https://a.example, https://b.example\"\n",
	), 0o644))
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0o755))
	chdir(t, nested)

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("REPOSITORY_BACKEND", "")
	// Registered for cleanup; the loader sets them for real.
	t.Setenv("REMOTE_TIMEOUT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	require.NoError(t, os.Unsetenv("REMOTE_TIMEOUT"))
	require.NoError(t, os.Unsetenv("CORS_ALLOWED_ORIGINS"))

	cfg, err := Load(logger.New(io.Discard, logger.LevelCritical, "json"))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestGetDSN(t *testing.T) {
	assert.Equal(t, "postgres://x", DBConfig{DSN: "postgres://x"}.GetDSN())
	dsn := DBConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: "1", SSLMode: "disable", TimeZone: "UTC"}.GetDSN()
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", dsn)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
