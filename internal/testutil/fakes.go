package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/iconfont/internal/fontgen"
	"github.com/roach88/iconfont/internal/stylesheet"
)

// FakeFontCompiler records requests and returns "<format>:<font name>"
// bytes for every requested format.
type FakeFontCompiler struct {
	mu       sync.Mutex
	Requests []fontgen.Request

	// Err, when set, is returned instead of a result.
	Err error
}

// Compile implements fontgen.Compiler.
func (f *FakeFontCompiler) Compile(ctx context.Context, req fontgen.Request) (fontgen.Result, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}

	res := make(fontgen.Result, len(req.Formats))
	for _, format := range req.Formats {
		res[format] = []byte(fmt.Sprintf("%s:%s", format, req.FontName))
	}
	return res, nil
}

// FakeStylesheetCompiler returns the SCSS source prefixed with the style
// name as "CSS" and a fixed source map.
type FakeStylesheetCompiler struct {
	mu       sync.Mutex
	Requests []stylesheet.Request
	Closed   bool

	// Fail maps a style to the error its compilation returns.
	Fail map[stylesheet.Style]error
}

// FakeSourceMap is the source map the fake returns when one is requested.
const FakeSourceMap = `{"version":3,"sources":[],"mappings":""}`

// Compile implements stylesheet.Compiler.
func (f *FakeStylesheetCompiler) Compile(req stylesheet.Request) (stylesheet.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)
	if err := f.Fail[req.Style]; err != nil {
		return stylesheet.Output{}, err
	}

	out := stylesheet.Output{CSS: fmt.Sprintf("/* %s */\n%s", req.Style, req.Source)}
	if req.SourceMapURL != "" {
		out.SourceMap = FakeSourceMap
		out.CSS = stylesheet.WithSourceMapComment(out.CSS, req.SourceMapURL)
	}
	return out, nil
}

// Close implements stylesheet.Compiler.
func (f *FakeStylesheetCompiler) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
