package render

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/iconfont/internal/config"
)

// token wraps a placeholder name in its delimiters.
func token(name string) string {
	return "{{" + name + "}}"
}

// baseReplacements returns the old/new pairs shared by every template.
func baseReplacements(pkg config.Package) []string {
	v := pkg.SemVer()
	f := pkg.Family
	return []string{
		token("prefix"), f.Prefix,
		token("packageName"), pkg.Name,
		token("packageIcon"), f.Icon,
		token("fileName"), f.FileName,
		token("fontName"), f.Font.Name,
		token("fontFamily"), f.Font.Family,
		token("fontWeight"), f.Font.Weight,
		token("version"), v.String(),
		token("major"), strconv.Itoa(v.Major),
		token("minor"), strconv.Itoa(v.Minor),
		token("patch"), strconv.Itoa(v.Patch),
		token("npmFont"), f.NpmFont,
		token("npmJS"), f.NpmJS,
		token("npmSVG"), f.NpmSVG,
		token("website"), f.Website,
		token("colorPrimary"), f.Colors.Primary,
		token("colorSecondary"), f.Colors.Secondary,
	}
}

func replace(text string, pairs []string) string {
	return strings.NewReplacer(pairs...).Replace(text)
}

// HTML fills the base tokens and {{icons}} with the icon literals joined
// by commas, so "icons = [{{icons}}]" becomes a JavaScript array.
func HTML(pkg config.Package, icons []string, text string) string {
	pairs := append(baseReplacements(pkg), token("icons"), strings.Join(icons, ","))
	return replace(text, pairs)
}

// SVGPreview is HTML plus {{date}}, filled with the creation date as a
// JSON string.
func SVGPreview(pkg config.Package, icons []string, text string) string {
	pairs := append(baseReplacements(pkg),
		token("icons"), strings.Join(icons, ","),
		token("date"), jsString(pkg.Family.Date),
	)
	return replace(text, pairs)
}

// SCSS fills the base tokens and {{iconMap}} with one map entry per line,
// then collapses "<prefix>-css-<prefix>" into "<prefix>-css-prefix".
func SCSS(pkg config.Package, iconMap []string, text string) string {
	pairs := append(baseReplacements(pkg), token("iconMap"), strings.Join(iconMap, ",\n"))
	out := replace(text, pairs)

	prefix := pkg.Family.Prefix
	if prefix == "" {
		return out
	}
	return strings.ReplaceAll(out, prefix+"-css-"+prefix, prefix+"-css-prefix")
}

var tokenPattern = regexp.MustCompile(`\{\{[A-Za-z][A-Za-z0-9]*\}\}`)

// UnresolvedTokens lists the distinct placeholders left in rendered text,
// sorted.
func UnresolvedTokens(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range tokenPattern.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// jsString quotes s as a JSON string literal, which is also valid
// JavaScript.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
