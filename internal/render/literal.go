package render

import (
	"fmt"
	"strings"

	"github.com/roach88/iconfont/internal/icon"
)

// IconLiteral renders one entry of the preview page's icon array.
func IconLiteral(ic icon.Icon) string {
	return objectLiteral(ic, "", "")
}

// SVGIconLiteral is IconLiteral plus the glyph's path data and viewBox for
// the inline-SVG preview.
func SVGIconLiteral(ic icon.Icon, pathData, viewBox string) string {
	return objectLiteral(ic, pathData, viewBox)
}

func objectLiteral(ic icon.Icon, pathData, viewBox string) string {
	var b strings.Builder
	b.WriteString("{name:")
	b.WriteString(jsString(ic.Name))
	b.WriteString(",hex:")
	b.WriteString(jsString(ic.Codepoint))
	b.WriteString(",version:")
	b.WriteString(jsString(ic.Version))
	if ic.Deprecated {
		b.WriteString(",deprecated:true")
	}
	if pathData != "" {
		b.WriteString(",data:")
		b.WriteString(jsString(pathData))
	}
	if viewBox != "" {
		b.WriteString(",viewBox:")
		b.WriteString(jsString(viewBox))
	}
	b.WriteString("}")
	return b.String()
}

// IconLiterals renders IconLiteral for every record.
func IconLiterals(m icon.Manifest) []string {
	out := make([]string, 0, len(m))
	for _, ic := range m {
		out = append(out, IconLiteral(ic))
	}
	return out
}

// SCSSEntry renders one line of the SCSS icon map.
func SCSSEntry(ic icon.Icon) string {
	return fmt.Sprintf("  %q: %s", ic.Name, ic.Codepoint)
}

// SCSSEntries renders SCSSEntry for every record.
func SCSSEntries(m icon.Manifest) []string {
	out := make([]string, 0, len(m))
	for _, ic := range m {
		out = append(out, SCSSEntry(ic))
	}
	return out
}
