// Package stylesheet compiles the generated SCSS into CSS.
package stylesheet

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
)

// Style is a CSS output style.
type Style string

// Output styles.
const (
	Expanded   Style = "expanded"
	Compressed Style = "compressed"
)

// Request is one compilation of an SCSS entry point.
type Request struct {
	// Source is the SCSS text and URL its location, used to resolve
	// imports relative to it.
	Source string
	URL    string

	IncludePaths []string
	Style        Style

	// SourceMapURL, when set, asks for a source map and is referenced from
	// a trailing comment in the CSS.
	SourceMapURL string
}

// Output is compiled CSS and its source map (empty when not requested).
type Output struct {
	CSS       string
	SourceMap string
}

// Compiler compiles SCSS.
type Compiler interface {
	Compile(req Request) (Output, error)
	Close() error
}

// DartSass compiles through the Dart Sass embedded protocol. The sass
// process is started on first use and kept until Close.
type DartSass struct {
	Bin     string
	Timeout time.Duration

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
	startErr   error
}

// NewDartSass returns a compiler for the given sass executable.
func NewDartSass(bin string, timeout time.Duration) *DartSass {
	return &DartSass{Bin: bin, Timeout: timeout}
}

func (d *DartSass) start() (*godartsass.Transpiler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transpiler != nil || d.startErr != nil {
		return d.transpiler, d.startErr
	}
	d.transpiler, d.startErr = godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: d.Bin,
		Timeout:                  d.Timeout,
	})
	if d.startErr != nil {
		d.startErr = fmt.Errorf("start %s: %w", d.Bin, d.startErr)
	}
	return d.transpiler, d.startErr
}

// Compile implements Compiler.
func (d *DartSass) Compile(req Request) (Output, error) {
	t, err := d.start()
	if err != nil {
		return Output{}, err
	}

	style, err := outputStyle(req.Style)
	if err != nil {
		return Output{}, err
	}

	res, err := t.Execute(godartsass.Args{
		Source:                  req.Source,
		URL:                     req.URL,
		IncludePaths:            req.IncludePaths,
		OutputStyle:             style,
		EnableSourceMap:         req.SourceMapURL != "",
		SourceMapIncludeSources: req.SourceMapURL != "",
	})
	if err != nil {
		return Output{}, err
	}

	out := Output{CSS: res.CSS, SourceMap: res.SourceMap}
	if req.SourceMapURL != "" && out.SourceMap != "" {
		out.CSS = WithSourceMapComment(out.CSS, req.SourceMapURL)
	}
	return out, nil
}

// Close stops the sass process.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transpiler == nil {
		return nil
	}
	err := d.transpiler.Close()
	d.transpiler = nil
	if errors.Is(err, godartsass.ErrShutdown) {
		return nil
	}
	return err
}

// WithSourceMapComment appends the sourceMappingURL comment to css.
func WithSourceMapComment(css, url string) string {
	if css != "" && css[len(css)-1] != '\n' {
		css += "\n"
	}
	return css + "/*# sourceMappingURL=" + url + " */\n"
}

func outputStyle(s Style) (godartsass.OutputStyle, error) {
	switch s {
	case Expanded, "":
		return godartsass.OutputStyleExpanded, nil
	case Compressed:
		return godartsass.OutputStyleCompressed, nil
	default:
		return "", fmt.Errorf("unknown output style %q", s)
	}
}
