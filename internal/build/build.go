package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/iconfont/internal/config"
	"github.com/roach88/iconfont/internal/fontgen"
	"github.com/roach88/iconfont/internal/history"
	"github.com/roach88/iconfont/internal/icon"
	"github.com/roach88/iconfont/internal/manifest"
	"github.com/roach88/iconfont/internal/reconcile"
	"github.com/roach88/iconfont/internal/svgicon"
)

// Report summarizes a run. It is returned alongside errors so callers can
// show what happened before the failure.
type Report struct {
	BuildID string `json:"build_id,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`

	Icons     int         `json:"icons"`
	Renamed   int         `json:"renamed"`
	Added     []icon.Icon `json:"added,omitempty"`
	Allocated []icon.Icon `json:"allocated,omitempty"`
	Orphans   []string    `json:"orphans,omitempty"`

	ManifestWritten bool `json:"manifest_written"`
	PackageWritten  bool `json:"package_written"`

	// IconErrors is the capped per-icon report, ending in the truncation
	// marker when errors were dropped.
	IconErrors []string `json:"icon_errors,omitempty"`

	Outputs  []history.Output `json:"outputs,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

func (r *Report) warn(logf func(string, ...any), format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	logf("! %s", msg)
}

// run carries the state of one pipeline execution.
type run struct {
	opts    Options
	report  *Report
	started time.Time

	pkg    config.Package
	doc    *manifest.Document
	errs   *reconcile.ErrorList
	glyphs []glyph
}

// glyph is a manifest record with its file on disk.
type glyph struct {
	icon     icon.Icon
	path     string
	pathData string
	viewBox  string
}

// Run executes the pipeline.
func Run(ctx context.Context, opts Options) (*Report, error) {
	opts.withDefaults()
	r := &run{
		opts:    opts,
		report:  &Report{DryRun: opts.DryRun},
		started: opts.Now(),
	}
	if !opts.DryRun {
		r.report.BuildID = opts.NewID()
	}

	err := r.execute(ctx)
	r.recordBuild(ctx, err)
	return r.report, err
}

func (r *run) execute(ctx context.Context) error {
	if err := r.loadInputs(); err != nil {
		return err
	}
	if err := r.reconcile(ctx); err != nil {
		return err
	}
	r.inspectGlyphs()

	if err := r.syncManifest(ctx); err != nil {
		return err
	}

	r.report.IconErrors = r.errs.Report()
	if r.errs.Len() > 0 {
		return stageErr(StageReconcile, r.opts.SVG, r.errs)
	}
	if r.opts.DryRun {
		return nil
	}

	fonts, err := r.compileFonts(ctx)
	if err != nil {
		return err
	}
	return r.writeOutputs(fonts)
}

// loadInputs checks the svg folder and loads the font-build file and the
// manifest. Nothing is written.
func (r *run) loadInputs() error {
	info, err := os.Stat(r.opts.SVG)
	if err != nil || !info.IsDir() {
		return stageErr(StageConfig, r.opts.SVG, fmt.Errorf("unable to find %q folder", r.opts.SVG))
	}

	pkgFile, err := config.LoadPackage(r.opts.Font, r.started)
	if err != nil {
		return stageErr(StageConfig, r.opts.Font, err)
	}
	r.pkg = pkgFile.Package

	doc, err := manifest.Load(r.opts.Meta)
	if err != nil {
		return stageErr(StageManifest, r.opts.Meta, err)
	}
	r.doc = doc
	r.opts.Logf("Generating from %d icons:", len(doc.Icons))

	if !r.opts.DryRun {
		written, err := pkgFile.WriteIfChanged()
		if err != nil {
			return stageErr(StageConfig, r.opts.Font, err)
		}
		r.report.PackageWritten = written
		if written {
			r.opts.Logf("- Updated %s", filepath.Base(r.opts.Font))
		}
	}
	return nil
}

func (r *run) reconcile(ctx context.Context) error {
	rec := &reconcile.Reconciler{
		Dir:     r.opts.SVG,
		Version: r.pkg.SemVer().String(),
		DryRun:  r.opts.DryRun,
	}
	if r.opts.History != nil {
		reserved, err := r.opts.History.Reserved(ctx)
		if err != nil {
			return stageErr(StageHistory, "", err)
		}
		rec.Reserved = reserved
	}

	res, err := rec.Reconcile(&r.doc.Icons)
	if err != nil {
		return stageErr(StageReconcile, r.opts.SVG, err)
	}
	r.errs = res.Errors

	r.report.Icons = len(r.doc.Icons)
	r.report.Renamed = res.Renamed
	r.report.Added = res.Added
	r.report.Allocated = res.Allocated
	r.report.Orphans = res.Orphans
	for _, ic := range res.Added {
		r.opts.Logf("- New icon %s (%s)", ic.Name, ic.Codepoint)
	}
	for _, name := range res.Orphans {
		r.report.warn(r.opts.Logf, "%s is not in the manifest", name)
	}
	return nil
}

// inspectGlyphs locates every record's file and checks it parses and
// draws. Problems join the per-icon error list.
func (r *run) inspectGlyphs() {
	r.glyphs = r.glyphs[:0]
	for _, ic := range r.doc.Icons {
		path := filepath.Join(r.opts.SVG, ic.FileName())
		if _, err := os.Stat(path); err != nil && r.opts.DryRun {
			// Not renamed yet.
			path = filepath.Join(r.opts.SVG, ic.PlainFileName())
		}
		if _, err := os.Stat(path); err != nil {
			// Reported by the reconciler.
			continue
		}

		info, err := svgicon.InspectFile(path)
		if err != nil {
			r.errs.Add(fmt.Sprintf("Invalid svg at %q: %v", filepath.Base(path), err))
			continue
		}
		r.glyphs = append(r.glyphs, glyph{icon: ic, path: path, pathData: info.PathData, viewBox: info.ViewBox})
	}
}

// syncManifest persists the manifest and the allocations, even when icon
// errors will abort the run.
func (r *run) syncManifest(ctx context.Context) error {
	if r.opts.DryRun {
		return nil
	}

	written, err := r.doc.Sync()
	if err != nil {
		return stageErr(StageManifest, r.opts.Meta, err)
	}
	r.report.ManifestWritten = written
	if written {
		r.opts.Logf("- Updated %s", filepath.Base(r.opts.Meta))
	}

	if r.opts.History != nil {
		if _, err := r.opts.History.RecordAllocations(ctx, r.report.BuildID, r.started, r.doc.Icons); err != nil {
			r.report.warn(r.opts.Logf, "history: %v", err)
		}
	}
	return nil
}

func (r *run) compileFonts(ctx context.Context) (fontgen.Result, error) {
	if r.opts.Fonts == nil {
		return nil, stageErr(StageFont, "", errors.New("no glyph compiler configured"))
	}
	if len(r.glyphs) == 0 {
		return nil, stageErr(StageFont, r.opts.SVG, errors.New("no icons to compile"))
	}

	files := make([]string, len(r.glyphs))
	runes := make([]rune, 0, len(r.glyphs))
	for i, g := range r.glyphs {
		files[i] = g.path
		cp, err := icon.Rune(g.icon.Codepoint)
		if err != nil {
			return nil, stageErr(StageFont, g.path, err)
		}
		runes = append(runes, cp)
	}

	if r.opts.CompileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.CompileTimeout)
		defer cancel()
	}

	res, err := r.opts.Fonts.Compile(ctx, fontgen.Request{
		FontName:   r.pkg.Family.FileName,
		Files:      files,
		Formats:    fontgen.Formats(r.opts.FontSVG),
		FontHeight: r.opts.FontHeight,
	})
	if err != nil {
		return nil, stageErr(StageFont, "", err)
	}
	if err := r.opts.VerifyFonts(res, runes); err != nil {
		return nil, stageErr(StageFont, "", err)
	}
	return res, nil
}

// recordBuild writes the ledger row. Dry runs and runs that failed before
// a build ID existed are not recorded.
func (r *run) recordBuild(ctx context.Context, runErr error) {
	if r.opts.History == nil || r.opts.DryRun || r.report.BuildID == "" {
		return
	}

	b := history.Build{
		ID:             r.report.BuildID,
		StartedAt:      r.started,
		FinishedAt:     r.opts.Now(),
		PackageName:    r.pkg.Name,
		PackageVersion: r.pkg.SemVer().String(),
		ToolVersion:    icon.ToolVersion,
		Icons:          r.report.Icons,
		Status:         history.StatusOK,
	}
	if runErr != nil {
		b.Status = history.StatusFailed
		b.Message = runErr.Error()
	}
	if err := r.opts.History.RecordBuild(ctx, b, r.report.Outputs); err != nil {
		r.report.warn(r.opts.Logf, "history: %v", err)
	}
}
