package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings configure the external tools. They come from the environment
// because they describe the machine, not the icon project.
type Settings struct {
	WebfontBin     string        `env:"ICONFONT_WEBFONT_BIN" envDefault:"webfont"`
	SassBin        string        `env:"ICONFONT_SASS_BIN" envDefault:"sass"`
	FontHeight     int           `env:"ICONFONT_FONT_HEIGHT" envDefault:"512"`
	CompileTimeout time.Duration `env:"ICONFONT_COMPILE_TIMEOUT" envDefault:"2m"`
	NoHistory      bool          `env:"ICONFONT_NO_HISTORY" envDefault:"false"`
}

// ParseEnv loads Settings from environment variables.
func ParseEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.FontHeight <= 0 {
		return Settings{}, fmt.Errorf("parse env: ICONFONT_FONT_HEIGHT must be positive, got %d", s.FontHeight)
	}
	return s, nil
}
