package build

import (
	"os"
	"path/filepath"

	"github.com/roach88/iconfont/internal/fontgen"
	"github.com/roach88/iconfont/internal/history"
	"github.com/roach88/iconfont/internal/render"
	"github.com/roach88/iconfont/internal/stylesheet"
)

// Distribution sub-folders.
const (
	FontsDir = "fonts"
	SCSSDir  = "scss"
	CSSDir   = "css"
	JSDir    = "js"
)

// variant is one stylesheet output style.
type variant struct {
	style  stylesheet.Style
	suffix string
}

var variants = []variant{
	{style: stylesheet.Expanded, suffix: ".css"},
	{style: stylesheet.Compressed, suffix: ".min.css"},
}

// writeOutputs writes fonts, the preview page, SCSS, JS and CSS into the
// dist folder.
func (r *run) writeOutputs(fonts fontgen.Result) error {
	if err := r.createFolders(); err != nil {
		return err
	}

	fileName := r.pkg.Family.FileName
	for _, f := range fontgen.Formats(r.opts.FontSVG) {
		if err := r.write(filepath.Join(FontsDir, fontgen.FileName(fileName, f)), fonts[f]); err != nil {
			return err
		}
	}
	r.opts.Logf("- Generated %s fonts", joinFormats(fontgen.Formats(r.opts.FontSVG)))

	if err := r.writeIndex(); err != nil {
		return err
	}
	mainSCSS, err := r.writeSCSS()
	if err != nil {
		return err
	}
	if err := r.writeJS(); err != nil {
		return err
	}
	return r.writeCSS(mainSCSS)
}

func (r *run) createFolders() error {
	for _, dir := range []string{"", FontsDir, SCSSDir, CSSDir, JSDir} {
		path := filepath.Join(r.opts.Dist, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return stageErr(StageWrite, path, err)
		}
	}
	r.opts.Logf("- Folders created.")
	return nil
}

// write stores data under the dist folder and records it as an output.
func (r *run) write(rel string, data []byte) error {
	path := filepath.Join(r.opts.Dist, rel)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return stageErr(StageWrite, path, err)
	}
	r.report.Outputs = append(r.report.Outputs, history.NewOutput(filepath.ToSlash(rel), data))
	return nil
}

func (r *run) template(name string) (string, error) {
	text, err := render.Template(name)
	if err != nil {
		return "", stageErr(StageRender, name, err)
	}
	return text, nil
}

// checkResolved warns about placeholders a template still carries.
func (r *run) checkResolved(rel, text string) {
	if left := render.UnresolvedTokens(text); len(left) > 0 {
		r.report.warn(r.opts.Logf, "%s: unresolved placeholders %v", rel, left)
	}
}

func (r *run) writeIndex() error {
	var out string
	switch r.opts.Mode {
	case ModeSVG:
		text, err := r.template(render.IndexSVGTemplate)
		if err != nil {
			return err
		}
		literals := make([]string, len(r.glyphs))
		for i, g := range r.glyphs {
			literals[i] = render.SVGIconLiteral(g.icon, g.pathData, g.viewBox)
		}
		out = render.SVGPreview(r.pkg, literals, text)
	default:
		text, err := r.template(render.IndexTemplate)
		if err != nil {
			return err
		}
		out = render.HTML(r.pkg, render.IconLiterals(r.doc.Icons), text)
	}

	r.checkResolved("index.html", out)
	if err := r.write("index.html", []byte(out)); err != nil {
		return err
	}
	r.opts.Logf("- Generated index.html")
	return nil
}

// writeSCSS writes the main stylesheet and its partials and returns the
// rendered main stylesheet.
func (r *run) writeSCSS() (string, error) {
	fileName := r.pkg.Family.FileName
	entries := render.SCSSEntries(r.doc.Icons)

	text, err := r.template(render.MainSCSSTemplate)
	if err != nil {
		return "", err
	}
	mainRel := filepath.Join(SCSSDir, fileName+".scss")
	main := render.SCSS(r.pkg, entries, text)
	r.checkResolved(mainRel, main)
	if err := r.write(mainRel, []byte(main)); err != nil {
		return "", err
	}
	r.opts.Logf("- Generated %s.scss", fileName)

	for _, name := range render.Partials {
		text, err := r.template(render.PartialTemplate(name))
		if err != nil {
			return "", err
		}
		rel := filepath.Join(SCSSDir, "_"+name+".scss")
		out := render.SCSS(r.pkg, entries, text)
		r.checkResolved(rel, out)
		if err := r.write(rel, []byte(out)); err != nil {
			return "", err
		}
		r.opts.Logf("  - Generated _%s.scss", name)
	}
	return main, nil
}

func (r *run) writeJS() error {
	rel := filepath.Join(JSDir, r.pkg.Family.FileName+".js")
	if err := r.write(rel, []byte(render.JSModule(r.pkg, r.doc.Icons))); err != nil {
		return err
	}
	r.opts.Logf("- Generated %s.js", r.pkg.Family.FileName)
	return nil
}

// writeCSS compiles each variant independently; a failed variant is a
// warning and does not stop the other.
func (r *run) writeCSS(mainSCSS string) error {
	if r.opts.Styles == nil {
		r.report.warn(r.opts.Logf, "no stylesheet compiler configured, skipping css")
		return nil
	}

	scssDir, err := filepath.Abs(filepath.Join(r.opts.Dist, SCSSDir))
	if err != nil {
		return stageErr(StageStylesheet, scssDir, err)
	}
	fileName := r.pkg.Family.FileName

	for _, v := range variants {
		cssName := fileName + v.suffix
		out, err := r.opts.Styles.Compile(stylesheet.Request{
			Source:       mainSCSS,
			URL:          "file://" + filepath.ToSlash(filepath.Join(scssDir, fileName+".scss")),
			IncludePaths: []string{scssDir},
			Style:        v.style,
			SourceMapURL: cssName + ".map",
		})
		if err != nil {
			r.report.warn(r.opts.Logf, "%s: %v", cssName, err)
			continue
		}

		if err := r.write(filepath.Join(CSSDir, cssName), []byte(out.CSS)); err != nil {
			return err
		}
		if out.SourceMap != "" {
			if err := r.write(filepath.Join(CSSDir, cssName+".map"), []byte(out.SourceMap)); err != nil {
				return err
			}
		}
		r.opts.Logf("- Generated %s", cssName)
	}
	return nil
}

func joinFormats(formats []fontgen.Format) string {
	s := ""
	for i, f := range formats {
		switch {
		case i == 0:
		case i == len(formats)-1:
			s += " and "
		default:
			s += ", "
		}
		s += string(f)
	}
	return s
}
