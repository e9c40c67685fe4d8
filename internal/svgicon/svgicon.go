// Package svgicon inspects glyph sources before they reach the font
// compiler: it checks that a file parses as SVG, that it draws something,
// and extracts path data for the inline-SVG preview.
package svgicon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/net/html"
)

// probeSize is the raster size used to detect glyphs that draw nothing.
const probeSize = 32

var (
	// ErrNoPaths is returned for SVG documents without drawable elements.
	ErrNoPaths = errors.New("svg has no drawable paths")

	// ErrBlank is returned for SVG documents that draw no visible pixels.
	ErrBlank = errors.New("svg draws nothing")
)

// Info describes one glyph source.
type Info struct {
	// ViewBox is "minX minY width height", empty when the document has no
	// usable viewBox.
	ViewBox string

	// Paths counts the drawable elements oksvg understood.
	Paths int

	// PathData joins the d attributes of every path element.
	PathData string
}

// Inspect parses an SVG document and rejects glyphs the font compiler
// would turn into empty or broken characters.
func Inspect(data []byte) (*Info, error) {
	svg, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if len(svg.SVGPaths) == 0 {
		return nil, ErrNoPaths
	}

	info := &Info{Paths: len(svg.SVGPaths)}
	if vb := svg.ViewBox; vb.W > 0 && vb.H > 0 {
		info.ViewBox = fmt.Sprintf("%g %g %g %g", vb.X, vb.Y, vb.W, vb.H)
	}

	if blank(svg) {
		return nil, ErrBlank
	}

	info.PathData, err = PathData(data)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// InspectFile reads and inspects the SVG at path.
func InspectFile(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Inspect(data)
}

// blank rasterizes the glyph at a small size and reports whether no pixel
// received any coverage.
func blank(svg *oksvg.SvgIcon) bool {
	svg.SetTarget(0, 0, probeSize, probeSize)
	img := image.NewRGBA(image.Rect(0, 0, probeSize, probeSize))
	scanner := rasterx.NewScannerGV(probeSize, probeSize, img, img.Bounds())
	svg.Draw(rasterx.NewDasher(probeSize, probeSize, scanner), 1.0)

	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// PathData returns the d attributes of every path element in document
// order, joined by a space.
func PathData(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse svg markup: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "path" {
			for _, attr := range n.Attr {
				if attr.Key == "d" {
					if d := strings.TrimSpace(attr.Val); d != "" {
						parts = append(parts, d)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " "), nil
}
