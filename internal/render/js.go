package render

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/roach88/iconfont/internal/config"
	"github.com/roach88/iconfont/internal/icon"
)

// ExportName is the JavaScript identifier for an icon: prefix and name in
// lower camel case, so "mdi" and "account-box" give "mdiAccountBox".
func ExportName(prefix, name string) string {
	return strcase.ToLowerCamel(prefix + "-" + name)
}

// JSModule renders an ES module exporting each icon's glyph as a string
// constant. Records that camel-case to an identifier already taken get the
// codepoint appended.
func JSModule(pkg config.Package, m icon.Manifest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s %s\n", pkg.Name, pkg.SemVer())

	taken := map[string]bool{}
	for _, ic := range m {
		if ic.Codepoint == "" {
			continue
		}
		name := ExportName(pkg.Family.Prefix, ic.Name)
		if taken[name] {
			name += ic.Codepoint
		}
		taken[name] = true

		if ic.Deprecated {
			b.WriteString("/** @deprecated */\n")
		}
		fmt.Fprintf(&b, "export const %s = \"\\u{%s}\";\n", name, ic.Codepoint)
	}
	return b.String()
}
