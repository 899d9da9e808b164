package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/arena-hud/internal/ratelimit"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, time.Second, cfg.CooldownDefault)
	assert.Empty(t, cfg.JournalDSN)
	assert.Empty(t, cfg.Surfaces)
	assert.Equal(t, "https://redzone/{action}", cfg.CallbackURL("redzone"))
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("FRAME_INTERVAL", "33ms")
	t.Setenv("COOLDOWNS", "search:500,custom:250")
	t.Setenv("SURFACES", "redzone,pvp_gunfight")
	t.Setenv("HOST_CALLBACK_URL", "http://127.0.0.1:30120/{surface}/{action}")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, []string{"redzone", "pvp_gunfight"}, cfg.Surfaces)
	assert.Equal(t, "http://127.0.0.1:30120/redzone/{action}", cfg.CallbackURL("redzone"))

	table := cfg.CooldownTable()
	assert.Equal(t, 500*time.Millisecond, table[ratelimit.KindSearch])
	assert.Equal(t, 250*time.Millisecond, table["custom"])
	assert.Equal(t, 500*time.Millisecond, table[ratelimit.KindTab], "built-in entries are kept")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"callback without action", "HOST_CALLBACK_URL", "https://{surface}/fixed"},
		{"bad duration", "GATEWAY_TIMEOUT", "soon"},
		{"bad cooldown", "COOLDOWNS", "search:fast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nHTTP_ADDR=:7000\n"), 0o600))

	t.Setenv("HTTP_ADDR", ":9100")
	// registers a restore so the value loaded from the file does not leak
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9100", cfg.HTTPAddr)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}
