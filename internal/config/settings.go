package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are process-level knobs read from the environment. CLI flags
// override them.
type Settings struct {
	Tick        time.Duration `env:"SPIDERLING_TICK" envDefault:"20ms"`
	LogLevel    string        `env:"SPIDERLING_LOG_LEVEL" envDefault:"INFO"`
	LogFormat   string        `env:"SPIDERLING_LOG_FORMAT" envDefault:"CONSOLE"`
	HistoryPath string        `env:"SPIDERLING_HISTORY"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.Tick <= 0 {
		return Settings{}, fmt.Errorf("SPIDERLING_TICK must be positive, got %s", s.Tick)
	}
	if s.HistoryPath == "" {
		s.HistoryPath = DefaultHistoryPath()
	}
	return s, nil
}

// DefaultHistoryPath returns ~/.local/share/spiderling/history.log, or a
// relative fallback when the home directory cannot be resolved.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "spiderling-history.log"
	}
	return filepath.Join(home, ".local", "share", "spiderling", "history.log")
}
