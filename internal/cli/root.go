package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/iconfont/internal/config"
	"github.com/roach88/iconfont/internal/fontgen"
	"github.com/roach88/iconfont/internal/stylesheet"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Dir       string
	Meta      string
	Font      string
	SVG       string
	Dist      string
	Mode      string
	FontSVG   bool
	History   string
	NoHistory bool

	toolchain Toolchain
	logger    *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Toolchain supplies the external compilers, the settings and the clock.
// Tests swap in fakes.
type Toolchain struct {
	Settings    func() (config.Settings, error)
	Fonts       func(config.Settings) fontgen.Compiler
	Styles      func(config.Settings) stylesheet.Compiler
	VerifyFonts func(fontgen.Result, []rune) error
	Now         func() time.Time
	NewID       func() string
}

// DefaultToolchain shells out to webfont and dart-sass as configured by the
// environment.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Settings: config.ParseEnv,
		Fonts: func(s config.Settings) fontgen.Compiler {
			return &fontgen.Webfont{Bin: s.WebfontBin}
		},
		Styles: func(s config.Settings) stylesheet.Compiler {
			return stylesheet.NewDartSass(s.SassBin, s.CompileTimeout)
		},
	}
}

// NewRootCommand creates the root command for the iconfont CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithToolchain(DefaultToolchain())
}

// NewRootCommandWithToolchain creates the root command with the given
// toolchain.
func NewRootCommandWithToolchain(tc Toolchain) *cobra.Command {
	opts := &RootOptions{toolchain: tc}

	cmd := &cobra.Command{
		Use:   "iconfont",
		Short: "Build an icon font from a folder of SVG glyphs",
		Long: `Build an icon font package from a folder of SVG glyphs.

Glyphs are matched against the meta.json manifest, renamed to
u<codepoint>-<name>.svg, and compiled into TTF, EOT, WOFF and WOFF2 fonts
together with SCSS, CSS, a JS module and an HTML preview page.

Running iconfont without a subcommand is the same as iconfont build.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", ErrCodeUsage, msg)
				return NewExitError(ExitCommandError, msg)
			}
			opts.logger = newLogger(cmd, opts.Verbose)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, cmd, false)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintf(c.ErrOrStderr(), "Error [%s]: %v\n", ErrCodeUsage, err)
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	addGlobalFlags(cmd, opts)

	// Add subcommands
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// addGlobalFlags registers the persistent flags every command shares.
func addGlobalFlags(cmd *cobra.Command, opts *RootOptions) {
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Dir, "dir", "./", "project directory")
	flags.StringVar(&opts.Meta, "meta", "", "manifest file (default <dir>/meta.json)")
	flags.StringVar(&opts.Font, "font", "", "font-build file (default <dir>/font-build.json)")
	flags.StringVar(&opts.SVG, "svg", "", "svg folder (default <dir>/svg)")
	flags.StringVar(&opts.Dist, "dist", "", "output folder (default <dir>/dist)")
	flags.StringVar(&opts.Mode, "mode", "webfont", "preview page mode (webfont|svg)")
	flags.BoolVar(&opts.FontSVG, "fontSvg", false, "also build an SVG font")
	flags.StringVar(&opts.History, "history", "", "build history database (default <dir>/.iconfont/history.db)")
	flags.BoolVar(&opts.NoHistory, "no-history", false, "do not read or record build history")
}

// newLogger builds the diagnostic logger. Verbose runs log at debug level.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
