package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/DoyleJ11/arena-hud/internal/ratelimit"
)

var ErrBadCallbackURL = errors.New("HOST_CALLBACK_URL must contain {action}")

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`

	// HostCallbackURL is expanded per surface and action.
	HostCallbackURL string        `env:"HOST_CALLBACK_URL" envDefault:"https://{surface}/{action}"`
	GatewayTimeout  time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"5s"`

	FrameInterval   time.Duration  `env:"FRAME_INTERVAL" envDefault:"16ms"`
	Cooldowns       map[string]int `env:"COOLDOWNS" envKeyValSeparator:":"`
	CooldownDefault time.Duration  `env:"COOLDOWN_DEFAULT" envDefault:"1s"`

	JournalDSN string   `env:"JOURNAL_DSN"`
	Surfaces   []string `env:"SURFACES" envSeparator:","`
}

// Load reads files (default ".env") if present, then the environment.
// Variables already set win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if !strings.Contains(cfg.HostCallbackURL, "{action}") {
		return Config{}, ErrBadCallbackURL
	}
	return cfg, nil
}

// CooldownTable merges COOLDOWNS (kind:ms) over the built-in table.
func (c Config) CooldownTable() map[ratelimit.Kind]time.Duration {
	table := ratelimit.DefaultCooldowns()
	for kind, ms := range c.Cooldowns {
		table[ratelimit.Kind(kind)] = time.Duration(ms) * time.Millisecond
	}
	return table
}

// CallbackURL returns the gateway URL template for one surface.
func (c Config) CallbackURL(surface string) string {
	return strings.ReplaceAll(c.HostCallbackURL, "{surface}", surface)
}
