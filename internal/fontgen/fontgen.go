// Package fontgen turns reconciled glyph files into font binaries.
//
// Compilation itself is delegated to a Compiler; the default one runs the
// webfont command line tool, which reads each glyph's codepoint from its
// u<CODEPOINT>-<name>.svg file name. Verify checks the produced binaries
// before they are written to the distribution folder.
package fontgen

import (
	"context"
	"fmt"
	"sort"
)

// Format is a font container format and the file extension used for it.
type Format string

// Supported formats.
const (
	TTF   Format = "ttf"
	EOT   Format = "eot"
	WOFF  Format = "woff"
	WOFF2 Format = "woff2"
	SVG   Format = "svg"
)

// Formats returns the formats a build produces, in output order.
func Formats(withSVG bool) []Format {
	f := []Format{TTF, EOT, WOFF, WOFF2}
	if withSVG {
		f = append(f, SVG)
	}
	return f
}

// Request describes one font compilation.
type Request struct {
	// FontName is the font's family name and the base name of its files.
	FontName string

	// Files are the glyph sources, already named u<CODEPOINT>-<name>.svg.
	Files []string

	Formats    []Format
	FontHeight int
}

// Result maps each requested format to the compiled bytes.
type Result map[Format][]byte

// Formats lists the formats present in r, sorted.
func (r Result) Formats() []Format {
	out := make([]Format, 0, len(r))
	for f := range r {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compiler compiles glyph files into font binaries.
type Compiler interface {
	Compile(ctx context.Context, req Request) (Result, error)
}

// FileName is the distribution file name for a format:
// <fileName>-webfont.<ext>.
func FileName(fileName string, f Format) string {
	return fmt.Sprintf("%s-webfont.%s", fileName, f)
}
