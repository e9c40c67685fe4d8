package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/iconfont/internal/build"
	"github.com/roach88/iconfont/internal/config"
	"github.com/roach88/iconfont/internal/history"
)

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Reconcile glyphs and build the font package",
		Long: `Reconcile the svg folder with the manifest and build the font package.

New glyphs get the next free codepoint and are renamed to
u<codepoint>-<name>.svg. The manifest and font-build files are rewritten
only when their content changes.

Example:
  iconfont build --dir ./icons
  iconfont build --mode svg --fontSvg --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, cmd, false)
		},
	}
	return cmd
}

// runBuild resolves the project, runs the pipeline and reports the result.
func runBuild(opts *RootOptions, cmd *cobra.Command, dryRun bool) error {
	formatter := opts.formatter(cmd)
	logger := opts.log()
	tc := opts.toolchain

	settings, err := loadSettings(tc)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid environment", err)
	}

	layout, err := LoadLayout(cmd, opts, settings)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	logger.Debug("layout resolved",
		"meta", layout.Meta, "font", layout.Font, "svg", layout.SVG, "dist", layout.Dist,
		"mode", layout.Mode, "font_svg", layout.FontSVG, "history", layout.History)

	bopts := build.Options{
		Paths:          layout.Paths,
		Mode:           layout.Mode,
		FontSVG:        layout.FontSVG,
		FontHeight:     settings.FontHeight,
		CompileTimeout: settings.CompileTimeout,
		VerifyFonts:    tc.VerifyFonts,
		DryRun:         dryRun,
		Now:            tc.Now,
		NewID:          tc.NewID,
		Logf:           formatter.Progress,
	}

	if !dryRun {
		if tc.Fonts != nil {
			bopts.Fonts = tc.Fonts(settings)
		}
		if tc.Styles != nil {
			styles := tc.Styles(settings)
			defer func() {
				if err := styles.Close(); err != nil {
					logger.Warn("closing stylesheet compiler", "error", err)
				}
			}()
			bopts.Styles = styles
		}
	}

	if layout.History != "" && !(dryRun && !exists(layout.History)) {
		store, err := history.Open(layout.History)
		if err != nil {
			_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to open history", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing history", "error", err)
			}
		}()
		bopts.History = store
		logger.Debug("history ready", "path", layout.History)
	}

	report, err := build.Run(cmd.Context(), bopts)
	if err != nil {
		return reportBuildError(formatter, err, report)
	}
	logger.Debug("build finished", "build_id", report.BuildID, "outputs", len(report.Outputs))

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return formatter.Success(summarize(report))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadSettings(tc Toolchain) (config.Settings, error) {
	if tc.Settings == nil {
		return config.ParseEnv()
	}
	return tc.Settings()
}

func reportLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to load project", err)
	}
	_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
	if loadErr.Usage {
		return NewExitError(ExitCommandError, loadErr.Message)
	}
	return WrapExitError(ExitFailure, "failed to load project", err)
}

// reportBuildError prints a failed run. JSON output carries the partial
// report next to the error; text output lists the icon errors one per line.
func reportBuildError(formatter *OutputFormatter, err error, report *build.Report) error {
	code, message, details := describeBuildError(err, report)

	if formatter.Format == "json" {
		resp := CLIResponse{
			Status: "error",
			Data:   report,
			Error:  &CLIError{Code: code, Message: message, Details: details},
		}
		if report != nil {
			resp.BuildID = report.BuildID
		}
		if encErr := jsonEncode(formatter.Writer, resp); encErr != nil {
			return encErr
		}
		return WrapExitError(ExitFailure, "build failed", err)
	}

	_ = formatter.Error(code, message, nil)
	if lines, ok := details.([]string); ok {
		w := formatter.GetErrWriter()
		for _, line := range lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	return WrapExitError(ExitFailure, "build failed", err)
}

// summarize renders the text form of a successful report.
func summarize(r *build.Report) string {
	var b strings.Builder
	if r.DryRun {
		fmt.Fprintf(&b, "✓ %d icons valid", r.Icons)
		if len(r.Added) > 0 {
			fmt.Fprintf(&b, ", %d new", len(r.Added))
		}
		if r.Renamed > 0 {
			fmt.Fprintf(&b, ", %d to rename", r.Renamed)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "✓ Built %d icons into %d files", r.Icons, len(r.Outputs))
	if r.BuildID != "" {
		fmt.Fprintf(&b, " (build %s)", r.BuildID)
	}
	if n := len(r.Warnings); n > 0 {
		fmt.Fprintf(&b, "\n%d warning(s)", n)
	}
	return b.String()
}
