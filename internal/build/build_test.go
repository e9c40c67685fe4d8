package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/iconfont/internal/fontgen"
	"github.com/roach88/iconfont/internal/history"
	"github.com/roach88/iconfont/internal/icon"
	"github.com/roach88/iconfont/internal/manifest"
	"github.com/roach88/iconfont/internal/reconcile"
	"github.com/roach88/iconfont/internal/stylesheet"
	"github.com/roach88/iconfont/internal/svgicon"
	"github.com/roach88/iconfont/internal/testutil"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	project *testutil.Project
	fonts   *testutil.FakeFontCompiler
	styles  *testutil.FakeStylesheetCompiler
	opts    Options
	logs    []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p := testutil.NewProject(t)
	f := &fixture{
		project: p,
		fonts:   &testutil.FakeFontCompiler{},
		styles:  &testutil.FakeStylesheetCompiler{},
	}
	f.opts = Options{
		Paths: Paths{
			Meta: p.Meta(),
			Font: p.Font(),
			SVG:  p.SVG(),
			Dist: p.Dist(),
		},
		FontHeight:  512,
		Fonts:       f.fonts,
		Styles:      f.styles,
		VerifyFonts: func(fontgen.Result, []rune) error { return nil },
		Now:         testutil.NewDeterministicClock(start, time.Second).Now,
		NewID:       testutil.NewFixedIDGenerator("build-1").Generate,
		Logf: func(format string, args ...any) {
			f.logs = append(f.logs, format)
		},
	}
	return f
}

func (f *fixture) run(t *testing.T) (*Report, error) {
	t.Helper()
	return Run(context.Background(), f.opts)
}

func TestRun_FullBuild(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "b.svg")
	f.project.AddGlyph(t, "a.svg")

	report, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, "build-1", report.BuildID)
	assert.Equal(t, 2, report.Icons)
	assert.Equal(t, 2, report.Renamed)
	assert.True(t, report.ManifestWritten)
	assert.True(t, report.PackageWritten)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.IconErrors)

	assert.ElementsMatch(t, []string{"uF0000-a.svg", "uF0001-b.svg"}, f.project.Files(t, "svg"))

	doc, err := manifest.Load(f.project.Meta())
	require.NoError(t, err)
	assert.Equal(t, icon.Manifest{
		{Name: "a", Codepoint: "F0000", Version: "0.1.0"},
		{Name: "b", Codepoint: "F0001", Version: "0.1.0"},
	}, doc.Icons)

	require.Len(t, f.fonts.Requests, 1)
	req := f.fonts.Requests[0]
	assert.Equal(t, "iconfont", req.FontName)
	assert.Equal(t, []string{
		filepath.Join(f.project.SVG(), "uF0000-a.svg"),
		filepath.Join(f.project.SVG(), "uF0001-b.svg"),
	}, req.Files)
	assert.Equal(t, fontgen.Formats(false), req.Formats)
	assert.Equal(t, 512, req.FontHeight)

	assert.ElementsMatch(t, []string{
		"iconfont-webfont.ttf", "iconfont-webfont.eot", "iconfont-webfont.woff", "iconfont-webfont.woff2",
	}, f.project.Files(t, "dist/fonts"))
	assert.ElementsMatch(t, []string{
		"iconfont.scss", "_animated.scss", "_core.scss", "_extras.scss", "_functions.scss",
		"_icons.scss", "_path.scss", "_variables.scss",
	}, f.project.Files(t, "dist/scss"))
	assert.ElementsMatch(t, []string{
		"iconfont.css", "iconfont.css.map", "iconfont.min.css", "iconfont.min.css.map",
	}, f.project.Files(t, "dist/css"))
	assert.Equal(t, []string{"iconfont.js"}, f.project.Files(t, "dist/js"))
	assert.Len(t, report.Outputs, 18)

	index := f.project.Read(t, "dist/index.html")
	assert.Contains(t, index, `var icons = [{name:"a",hex:"F0000",version:"0.1.0"},{name:"b",hex:"F0001",version:"0.1.0"}];`)

	variables := f.project.Read(t, "dist/scss/_variables.scss")
	assert.Contains(t, variables, "$icon-css-prefix: \"icon\" !default;")
	assert.Contains(t, variables, "  \"a\": F0000,\n  \"b\": F0001\n);")

	css := f.project.Read(t, "dist/css/iconfont.css")
	assert.Contains(t, css, "/* expanded */")
	assert.Contains(t, css, "sourceMappingURL=iconfont.css.map")
	assert.Equal(t, testutil.FakeSourceMap, f.project.Read(t, "dist/css/iconfont.min.css.map"))

	assert.Contains(t, f.project.Read(t, "dist/js/iconfont.js"), `export const iconA = "\u{F0000}";`)
	assert.Contains(t, f.logs, "- Generated index.html")
}

func TestRun_SecondRunWritesNoConfig(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")

	_, err := f.run(t)
	require.NoError(t, err)

	metaBefore, err := os.Stat(f.project.Meta())
	require.NoError(t, err)
	fontBefore := f.project.Read(t, "font-build.json")

	report, err := f.run(t)
	require.NoError(t, err)

	assert.False(t, report.ManifestWritten)
	assert.False(t, report.PackageWritten)
	assert.Zero(t, report.Renamed)
	assert.Empty(t, report.Added)

	metaAfter, err := os.Stat(f.project.Meta())
	require.NoError(t, err)
	assert.Equal(t, metaBefore.ModTime(), metaAfter.ModTime())
	assert.Equal(t, fontBefore, f.project.Read(t, "font-build.json"))
}

func TestRun_IconErrorsAbortAfterSync(t *testing.T) {
	f := newFixture(t)
	f.project.AddFile(t, "meta.json", `[{"name": "ghost", "codepoint": "F0000", "version": "1.0.0"}]`)
	f.project.AddGlyph(t, "a.svg")

	report, err := f.run(t)
	require.Error(t, err)

	var buildErr *Error
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageReconcile, buildErr.Stage)

	var list *reconcile.ErrorList
	require.True(t, errors.As(err, &list))
	assert.Equal(t, []string{`Invalid icon at "ghost.svg"`}, report.IconErrors)

	assert.True(t, report.ManifestWritten, "renamed files keep their codepoints")
	doc, err := manifest.Load(f.project.Meta())
	require.NoError(t, err)
	require.Len(t, doc.Icons, 2)
	assert.Equal(t, "a", doc.Icons[1].Name)
	assert.Equal(t, "F0001", doc.Icons[1].Codepoint)

	assert.Empty(t, f.fonts.Requests)
	_, err = os.Stat(f.project.Dist())
	assert.True(t, os.IsNotExist(err))
}

func TestRun_InvalidFileNameKeepsManifestLoadable(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.project.AddGlyph(t, "arrow left.svg")

	for i := 0; i < 2; i++ {
		report, err := f.run(t)
		require.Error(t, err, "run %d", i+1)

		var buildErr *Error
		require.True(t, errors.As(err, &buildErr))
		assert.Equal(t, StageReconcile, buildErr.Stage, "run %d", i+1)
		assert.Equal(t, []string{`Invalid icon name at "arrow left.svg"`}, report.IconErrors)

		doc, err := manifest.Load(f.project.Meta())
		require.NoError(t, err, "run %d", i+1)
		assert.Equal(t, icon.Manifest{{Name: "a", Codepoint: "F0000", Version: "0.1.0"}}, doc.Icons)
	}
	assert.ElementsMatch(t, []string{"arrow left.svg", "uF0000-a.svg"}, f.project.Files(t, "svg"))
}

func TestRun_ErrorCap(t *testing.T) {
	f := newFixture(t)
	meta := "["
	for i := 0; i < 8; i++ {
		if i > 0 {
			meta += ","
		}
		meta += `{"name": "missing-` + string(rune('a'+i)) + `", "codepoint": "` + icon.FormatCodepoint(i) + `"}`
	}
	f.project.AddFile(t, "meta.json", meta+"]")

	report, err := f.run(t)
	require.Error(t, err)
	require.Len(t, report.IconErrors, 6)
	assert.Equal(t, reconcile.TruncationMarker, report.IconErrors[5])
}

func TestRun_InvalidSVGJoinsIconErrors(t *testing.T) {
	f := newFixture(t)
	f.project.AddFile(t, "svg/empty.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"></svg>`)
	f.project.AddGlyph(t, "good.svg")

	report, err := f.run(t)
	require.Error(t, err)
	require.Len(t, report.IconErrors, 1)
	assert.Contains(t, report.IconErrors[0], `Invalid svg at "uF0000-empty.svg"`)
	assert.Contains(t, report.IconErrors[0], svgicon.ErrNoPaths.Error())
}

func TestRun_MissingSVGFolder(t *testing.T) {
	f := newFixture(t)
	f.opts.SVG = filepath.Join(f.project.Dir, "nope")

	_, err := f.run(t)
	require.Error(t, err)

	var buildErr *Error
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageConfig, buildErr.Stage)
	assert.Contains(t, err.Error(), "unable to find")

	_, err = os.Stat(f.project.Meta())
	assert.True(t, os.IsNotExist(err), "nothing is written before the inputs check out")
	_, err = os.Stat(f.project.Font())
	assert.True(t, os.IsNotExist(err))
}

func TestRun_MalformedManifest(t *testing.T) {
	f := newFixture(t)
	f.project.AddFile(t, "meta.json", `[{"name": "a",`)
	f.project.AddGlyph(t, "a.svg")

	_, err := f.run(t)
	require.Error(t, err)

	var buildErr *Error
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageManifest, buildErr.Stage)

	var parseErr *manifest.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, []string{"a.svg"}, f.project.Files(t, "svg"), "no rename on a broken manifest")
}

func TestRun_FontCompilerFailure(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.fonts.Err = errors.New("webfont exploded")

	_, err := f.run(t)
	require.Error(t, err)

	var buildErr *Error
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageFont, buildErr.Stage)
	assert.Contains(t, err.Error(), "webfont exploded")
}

func TestRun_FontVerifyFailure(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")

	var verified []rune
	f.opts.VerifyFonts = func(_ fontgen.Result, want []rune) error {
		verified = want
		return errors.New("missing glyph")
	}

	_, err := f.run(t)
	require.Error(t, err)
	assert.Equal(t, []rune{0xF0000}, verified)

	var buildErr *Error
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, StageFont, buildErr.Stage)
}

func TestRun_StylesheetVariantsFailIndependently(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.styles.Fail = map[stylesheet.Style]error{stylesheet.Compressed: errors.New("sass crashed")}

	report, err := f.run(t)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"iconfont.css", "iconfont.css.map"}, f.project.Files(t, "dist/css"))
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "iconfont.min.css: sass crashed")
	assert.Len(t, f.styles.Requests, 2)
}

func TestRun_NoStylesheetCompiler(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.opts.Styles = nil

	report, err := f.run(t)
	require.NoError(t, err)
	assert.Empty(t, f.project.Files(t, "dist/css"))
	assert.Len(t, report.Warnings, 1)
}

func TestRun_SVGMode(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.project.AddFile(t, "svg/big.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 512 512"><path d="M32 32h448v448H32z"/></svg>`)
	f.opts.Mode = ModeSVG

	_, err := f.run(t)
	require.NoError(t, err)

	index := f.project.Read(t, "dist/index.html")
	assert.Contains(t, index, `{name:"a",hex:"F0000",version:"0.1.0",data:"M2 2h20v20H2z",viewBox:"0 0 24 24"}`)
	assert.Contains(t, index, `{name:"big",hex:"F0001",version:"0.1.0",data:"M32 32h448v448H32z",viewBox:"0 0 512 512"}`)
	assert.Contains(t, index, `icon.viewBox || '0 0 24 24'`)
	assert.Contains(t, index, `var date = "2024-03-01T12:00:00Z";`)
}

func TestRun_FontSVG(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.opts.FontSVG = true

	_, err := f.run(t)
	require.NoError(t, err)
	assert.Contains(t, f.project.Files(t, "dist/fonts"), "iconfont-webfont.svg")
	assert.Equal(t, fontgen.Formats(true), f.fonts.Requests[0].Formats)
}

func TestRun_DryRun(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.project.AddGlyph(t, "b.svg")
	f.opts.DryRun = true

	report, err := f.run(t)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Empty(t, report.BuildID)
	assert.Len(t, report.Added, 2)
	assert.Equal(t, 2, report.Renamed)
	assert.False(t, report.ManifestWritten)
	assert.False(t, report.PackageWritten)

	assert.ElementsMatch(t, []string{"a.svg", "b.svg"}, f.project.Files(t, "svg"))
	for _, path := range []string{f.project.Meta(), f.project.Font(), f.project.Dist()} {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), path)
	}
	assert.Empty(t, f.fonts.Requests)
}

func TestRun_DryRunReportsInvalidSVG(t *testing.T) {
	f := newFixture(t)
	f.project.AddFile(t, "svg/broken.svg", `<svg xmlns="http://www.w3.org/2000/svg"><path fill="none" d="M0 0h1v1z"/></svg>`)
	f.opts.DryRun = true

	report, err := f.run(t)
	require.Error(t, err)
	require.Len(t, report.IconErrors, 1)
	assert.Contains(t, report.IconErrors[0], `Invalid svg at "broken.svg"`)
}

func TestRun_History(t *testing.T) {
	f := newFixture(t)
	store, err := history.Open(filepath.Join(f.project.Dir, ".iconfont", "history.db"))
	require.NoError(t, err)
	defer store.Close()
	f.opts.History = store

	ctx := context.Background()
	_, err = store.RecordAllocations(ctx, "earlier", start, []icon.Icon{{Name: "retired", Codepoint: "F0010", Version: "0.0.1"}})
	require.NoError(t, err)

	f.project.AddGlyph(t, "a.svg")
	report, err := f.run(t)
	require.NoError(t, err)

	doc, err := manifest.Load(f.project.Meta())
	require.NoError(t, err)
	assert.Equal(t, "F0011", doc.Icons[0].Codepoint, "retired codepoints are never reused")

	b, err := store.Build(ctx, "build-1")
	require.NoError(t, err)
	assert.Equal(t, history.StatusOK, b.Status)
	assert.Equal(t, 1, b.Icons)
	assert.Equal(t, start, b.StartedAt)

	outputs, err := store.Outputs(ctx, "build-1")
	require.NoError(t, err)
	assert.Len(t, outputs, len(report.Outputs))

	allocations, err := store.Allocations(ctx)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, "F0011", allocations[1].Codepoint)
	assert.Equal(t, "build-1", allocations[1].BuildID)
}

func TestRun_HistoryRecordsFailure(t *testing.T) {
	f := newFixture(t)
	store, err := history.Open(filepath.Join(f.project.Dir, ".iconfont", "history.db"))
	require.NoError(t, err)
	defer store.Close()
	f.opts.History = store
	f.fonts.Err = errors.New("webfont exploded")

	f.project.AddGlyph(t, "a.svg")
	_, err = f.run(t)
	require.Error(t, err)

	b, err := store.Build(context.Background(), "build-1")
	require.NoError(t, err)
	assert.Equal(t, history.StatusFailed, b.Status)
	assert.Contains(t, b.Message, "webfont exploded")

	allocations, err := store.Allocations(context.Background())
	require.NoError(t, err)
	assert.Len(t, allocations, 1, "allocations are kept even when the build fails")
}

// blockingCompiler waits for its context to end.
type blockingCompiler struct{}

func (blockingCompiler) Compile(ctx context.Context, _ fontgen.Request) (fontgen.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRun_CompileTimeout(t *testing.T) {
	f := newFixture(t)
	f.project.AddGlyph(t, "a.svg")
	f.opts.Fonts = blockingCompiler{}
	f.opts.CompileTimeout = 10 * time.Millisecond

	_, err := f.run(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeWebfont, false},
		{"webfont", ModeWebfont, false},
		{"svg", ModeSVG, false},
		{"png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestError_Format(t *testing.T) {
	err := &Error{Stage: StageFont, Path: "/x", Err: errors.New("boom")}
	assert.Equal(t, "font: /x: boom", err.Error())
	assert.Equal(t, "font: boom", (&Error{Stage: StageFont, Err: errors.New("boom")}).Error())
}

func TestJoinFormats(t *testing.T) {
	assert.Equal(t, "ttf, eot, woff and woff2", joinFormats(fontgen.Formats(false)))
	assert.Equal(t, "ttf", joinFormats([]fontgen.Format{fontgen.TTF}))
}
