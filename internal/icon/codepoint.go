package icon

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// BaseCodepoint is returned when no record carries a codepoint.
	BaseCodepoint = "F0000"

	// codepointPlane is the leading digit every codepoint carries.
	codepointPlane = "F"

	// maxCodepointValue is the last assignable value after the plane digit
	// (U+FFFFD is the last scalar of Private Use Area-A).
	maxCodepointValue = 0xFFFD

	// SVGExt is the only extension the reconciler treats as a glyph.
	SVGExt = ".svg"
)

// ErrCodepointsExhausted is returned when the next codepoint would leave
// Private Use Area-A.
var ErrCodepointsExhausted = errors.New("no codepoints left in private use area")

// canonicalPrefix matches the u<HEX>- prefix of reconciled file names. It is
// pinned to the F-plus-four-digit shape so names like "umbrella" or "u-turn"
// stay plain.
var canonicalPrefix = regexp.MustCompile(`^u[Ff][0-9A-Fa-f]{4}-`)

// NextCodepoint returns the next free codepoint for records.
//
// With no codepoint present it returns BaseCodepoint. Otherwise it returns
// the maximal codepoint plus one, formatted as "F" and four uppercase hex
// digits. Records without a codepoint are ignored. Callers must allocate
// sequentially and append each result before the next call.
func NextCodepoint(records []Icon) (string, error) {
	maxValue := -1
	for _, rec := range records {
		if rec.Codepoint == "" {
			continue
		}
		v, err := CodepointValue(rec.Codepoint)
		if err != nil {
			return "", fmt.Errorf("icon %q: %w", rec.Name, err)
		}
		if v > maxValue {
			maxValue = v
		}
	}

	if maxValue < 0 {
		return BaseCodepoint, nil
	}

	next := maxValue + 1
	if next > maxCodepointValue {
		return "", ErrCodepointsExhausted
	}
	return FormatCodepoint(next), nil
}

// CodepointValue parses the hex digits after the leading "F".
func CodepointValue(codepoint string) (int, error) {
	if !strings.HasPrefix(codepoint, codepointPlane) || len(codepoint) < 2 {
		return 0, fmt.Errorf("invalid codepoint %q", codepoint)
	}
	v, err := strconv.ParseUint(codepoint[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", codepoint, err)
	}
	return int(v), nil
}

// FormatCodepoint is the inverse of CodepointValue.
func FormatCodepoint(v int) string {
	return fmt.Sprintf("%s%04X", codepointPlane, v)
}

// Rune returns the Unicode scalar a codepoint string names, e.g. "F0001"
// is U+F0001.
func Rune(codepoint string) (rune, error) {
	v, err := strconv.ParseUint(codepoint, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", codepoint, err)
	}
	return rune(v), nil
}

// CanonicalFileName returns u<codepoint>-<name>.svg.
func CanonicalFileName(codepoint, name string) string {
	return "u" + codepoint + "-" + name + SVGExt
}

// IsCanonicalFileName reports whether a file name already carries the
// u<HEX>- prefix.
func IsCanonicalFileName(fileName string) bool {
	return canonicalPrefix.MatchString(fileName)
}
