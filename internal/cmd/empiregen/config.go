// Package empiregen builds the empiregen command tree.
package empiregen

import (
	"fmt"
	"strings"

	"github.com/louisbranch/empiregen/internal/engine"
	entrypoint "github.com/louisbranch/empiregen/internal/platform/cmd"
	"github.com/louisbranch/empiregen/internal/script/loader"
)

// Config holds command configuration. Every field reads an EMPIREGEN_
// prefixed variable and can be overridden by the matching flag. Tracing is
// configured separately through EMPIREGEN_OTEL_ENDPOINT and
// EMPIREGEN_OTEL_ENABLED.
type Config struct {
	GamePath      string  `env:"GAME_PATH"`
	DBPath        string  `env:"DB_PATH" envDefault:"data/empiregen.db"`
	FilePattern   string  `env:"FILE_PATTERN" envDefault:"*.txt"`
	Strict        bool    `env:"STRICT"`
	AttemptCap    int     `env:"ATTEMPT_CAP" envDefault:"50"`
	GestaltChance float64 `env:"GESTALT_CHANCE" envDefault:"0.30"`
	MetricsFile   string  `env:"METRICS_FILE"`
	Locale        string  `env:"LOCALE" envDefault:"en-US"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rules returns the default rules tuned by cfg.
func (c Config) Rules() (engine.Rules, error) {
	if c.AttemptCap <= 0 {
		return engine.Rules{}, fmt.Errorf("attempt cap must be positive, got %d", c.AttemptCap)
	}
	if c.GestaltChance < 0 || c.GestaltChance > 1 {
		return engine.Rules{}, fmt.Errorf("gestalt chance must be between 0 and 1, got %v", c.GestaltChance)
	}
	rules := engine.DefaultRules()
	rules.AttemptCap = c.AttemptCap
	rules.GestaltChance = c.GestaltChance
	return rules, nil
}

func (c Config) pattern() string {
	if strings.TrimSpace(c.FilePattern) == "" {
		return loader.DefaultPattern
	}
	return c.FilePattern
}
