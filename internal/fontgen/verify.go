package fontgen

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/font"
	"golang.org/x/image/font/sfnt"
)

// eotMagic is the MagicNumber field of an Embedded OpenType header.
const eotMagic = 0x504C

// MissingGlyphsError lists runes a compiled font does not map.
type MissingGlyphsError struct {
	Format Format
	Runes  []rune
}

func (e *MissingGlyphsError) Error() string {
	cps := make([]string, len(e.Runes))
	for i, r := range e.Runes {
		cps[i] = fmt.Sprintf("U+%04X", r)
	}
	return fmt.Sprintf("missing %d glyph(s): %s", len(e.Runes), strings.Join(cps, ", "))
}

// Verify checks every binary in res. SFNT-based formats must parse and map
// every rune in want; EOT and SVG fonts get a header check.
func Verify(res Result, want []rune) error {
	var errs []error
	for _, f := range res.Formats() {
		if err := verifyFormat(f, res[f], want); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
		}
	}
	return errors.Join(errs...)
}

func verifyFormat(f Format, data []byte, want []rune) error {
	if len(data) == 0 {
		return errors.New("empty output")
	}

	switch f {
	case TTF:
		return verifySFNT(f, data, want)
	case WOFF, WOFF2:
		raw, err := font.ToSFNT(data)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return verifySFNT(f, raw, want)
	case EOT:
		if len(data) < 36 || binary.LittleEndian.Uint16(data[34:]) != eotMagic {
			return errors.New("not an embedded opentype file")
		}
		return nil
	case SVG:
		if !bytes.Contains(data, []byte("<font")) {
			return errors.New("no <font> element")
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func verifySFNT(f Format, data []byte, want []rune) error {
	parsed, err := sfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	var buf sfnt.Buffer
	var missing []rune
	for _, r := range want {
		idx, err := parsed.GlyphIndex(&buf, r)
		if err != nil {
			return fmt.Errorf("glyph index U+%04X: %w", r, err)
		}
		if idx == 0 {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return &MissingGlyphsError{Format: f, Runes: missing}
	}
	return nil
}
