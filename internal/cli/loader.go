package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/iconfont/internal/build"
	"github.com/roach88/iconfont/internal/config"
	"github.com/roach88/iconfont/internal/manifest"
	"github.com/roach88/iconfont/internal/reconcile"
)

// Default locations inside the project directory.
const (
	DefaultMeta    = "meta.json"
	DefaultFont    = "font-build.json"
	DefaultSVG     = "svg"
	DefaultDist    = "dist"
	DefaultHistory = ".iconfont/history.db"
)

// Layout is a resolved project: where the inputs live and how to build.
type Layout struct {
	Dir string
	build.Paths

	Mode    build.Mode
	FontSVG bool

	// History is the ledger path, empty when history is disabled.
	History string
}

// LoadLayout resolves paths and options from flags, the project file and
// the defaults, in that order. Project file paths are relative to the
// project directory; flag paths are taken as given.
func LoadLayout(cmd *cobra.Command, opts *RootOptions, settings config.Settings) (*Layout, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	project, err := config.LoadProject(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}

	flags := cmd.Flags()
	pick := func(flag, flagValue, projectValue, def string) string {
		if flags.Changed(flag) {
			return flagValue
		}
		if projectValue != "" {
			if filepath.IsAbs(projectValue) {
				return projectValue
			}
			return filepath.Join(dir, projectValue)
		}
		return filepath.Join(dir, def)
	}

	l := &Layout{
		Dir: dir,
		Paths: build.Paths{
			Meta: pick("meta", opts.Meta, project.Meta, DefaultMeta),
			Font: pick("font", opts.Font, project.Font, DefaultFont),
			SVG:  pick("svg", opts.SVG, project.SVG, DefaultSVG),
			Dist: pick("dist", opts.Dist, project.Dist, DefaultDist),
		},
	}

	if flags.Changed("mode") {
		if l.Mode, err = build.ParseMode(opts.Mode); err != nil {
			return nil, &LoadError{Code: ErrCodeUsage, Message: err.Error(), Usage: true}
		}
	} else if l.Mode, err = build.ParseMode(project.Mode); err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("%s: %v", config.ProjectFileName, err)}
	}

	switch {
	case flags.Changed("fontSvg"):
		l.FontSVG = opts.FontSVG
	case project.FontSVG != nil:
		l.FontSVG = *project.FontSVG
	}

	if !opts.NoHistory && !settings.NoHistory {
		l.History = pick("history", opts.History, project.History, DefaultHistory)
	}
	return l, nil
}

// LoadError is a failure to resolve the project before any build starts.
type LoadError struct {
	Code    string
	Message string

	// Usage marks errors caused by a bad flag value.
	Usage bool
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeUsage    = "E002" // Bad flag value
	ErrCodeConfig   = "E003" // Missing folder, invalid font-build or project file
	ErrCodeManifest = "E004" // Unparseable or invalid manifest
	ErrCodeIcons    = "E005" // Per-icon reconciliation errors
	ErrCodeFont     = "E006" // Glyph compiler failure
	ErrCodeWrite    = "E007" // File write error
	ErrCodeHistory  = "E008" // History ledger error
	ErrCodeNotFound = "E009" // Unknown build ID
)

// MapStageToErrorCode maps a pipeline stage to an error code.
func MapStageToErrorCode(stage build.Stage) string {
	switch stage {
	case build.StageConfig:
		return ErrCodeConfig
	case build.StageManifest:
		return ErrCodeManifest
	case build.StageReconcile:
		return ErrCodeIcons
	case build.StageFont:
		return ErrCodeFont
	case build.StageRender, build.StageWrite, build.StageStylesheet:
		return ErrCodeWrite
	case build.StageHistory:
		return ErrCodeHistory
	default:
		return ErrCodeGeneric
	}
}

// describeBuildError returns the code, message and details to report for
// a failed run.
func describeBuildError(err error, report *build.Report) (code, message string, details interface{}) {
	var buildErr *build.Error
	if !errors.As(err, &buildErr) {
		return ErrCodeGeneric, err.Error(), nil
	}
	code = MapStageToErrorCode(buildErr.Stage)

	var list *reconcile.ErrorList
	if errors.As(err, &list) {
		lines := list.Report()
		if report != nil && len(report.IconErrors) > 0 {
			lines = report.IconErrors
		}
		return code, fmt.Sprintf("%d icon error(s)", list.Len()), lines
	}

	var invalid *manifest.InvalidError
	if errors.As(err, &invalid) {
		return code, buildErr.Error(), invalid.Errors
	}
	var invalidPkg *config.InvalidPackageError
	if errors.As(err, &invalidPkg) {
		return code, buildErr.Error(), invalidPkg.Errors
	}
	return code, buildErr.Error(), nil
}
