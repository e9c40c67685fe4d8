package build

import (
	"fmt"
	"time"

	"github.com/roach88/iconfont/internal/fontgen"
	"github.com/roach88/iconfont/internal/history"
	"github.com/roach88/iconfont/internal/stylesheet"
)

// Mode selects the preview page flavor.
type Mode string

// Preview modes.
const (
	ModeWebfont Mode = "webfont"
	ModeSVG     Mode = "svg"
)

// ParseMode validates a --mode value. Empty means ModeWebfont.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeWebfont:
		return ModeWebfont, nil
	case ModeSVG:
		return ModeSVG, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want %q or %q)", s, ModeWebfont, ModeSVG)
	}
}

// Paths locates the inputs and the output folder.
type Paths struct {
	Meta string
	Font string
	SVG  string
	Dist string
}

// Options configure one run.
type Options struct {
	Paths

	Mode    Mode
	FontSVG bool

	FontHeight     int
	CompileTimeout time.Duration

	// Fonts compiles glyphs. Required unless DryRun.
	Fonts fontgen.Compiler

	// Styles compiles SCSS. Nil skips CSS output with a warning.
	Styles stylesheet.Compiler

	// VerifyFonts checks compiled fonts; nil means fontgen.Verify.
	VerifyFonts func(fontgen.Result, []rune) error

	// History, when set, reserves past codepoints and records the build.
	History *history.Store

	// DryRun reconciles and validates without touching the disk.
	DryRun bool

	// Now and NewID default to time.Now and history.NewBuildID.
	Now   func() time.Time
	NewID func() string

	// Logf receives progress lines. Nil discards them.
	Logf func(format string, args ...any)
}

func (o *Options) withDefaults() {
	if o.Mode == "" {
		o.Mode = ModeWebfont
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = history.NewBuildID
	}
	if o.Logf == nil {
		o.Logf = func(string, ...any) {}
	}
	if o.VerifyFonts == nil {
		o.VerifyFonts = fontgen.Verify
	}
}
