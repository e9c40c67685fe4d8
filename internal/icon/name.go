package icon

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// validName mirrors the manifest schema: no slashes, backslashes or
// whitespace. Names end up as SCSS map keys and CSS class names.
var validName = regexp.MustCompile(`^[^/\\\s]+$`)

// ValidName reports whether name may be stored in the manifest.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// NameFromFile derives an icon name from a plain glyph file name by
// dropping the .svg extension. macOS reports decomposed (NFD) names, so the
// result is NFC normalized to match names typed into the manifest.
func NameFromFile(fileName string) string {
	return norm.NFC.String(strings.TrimSuffix(fileName, SVGExt))
}

// IsPlainSVG reports whether fileName is an un-reconciled glyph: exactly the
// lowercase .svg extension, a non-empty base name, and no u<HEX>- prefix.
func IsPlainSVG(fileName string) bool {
	if !strings.HasSuffix(fileName, SVGExt) || len(fileName) == len(SVGExt) {
		return false
	}
	return !IsCanonicalFileName(fileName)
}
