// Package schema validates the manifest and the font-build file against CUE
// schemas, plus the cross-record checks CUE cannot express (uniqueness).
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/iconfont/internal/icon"
)

//go:embed schema.cue
var schemaSrc string

// Validation error codes (E200-E299)
const (
	ErrSyntax             = "E200" // file is not valid JSON/CUE
	ErrManifestSchema     = "E201" // record violates #Icon
	ErrDuplicateName      = "E202" // two records share a name
	ErrDuplicateCodepoint = "E203" // two records share a codepoint
	ErrPackageSchema      = "E210" // font-build file violates #Package
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	schemaOnce  sync.Once
	schemaCtx   *cue.Context
	schemaValue cue.Value
)

func loadSchema() (*cue.Context, cue.Value) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schemaValue = schemaCtx.CompileString(schemaSrc, cue.Filename("schema.cue"))
		if err := schemaValue.Err(); err != nil {
			panic(fmt.Sprintf("schema: embedded schema does not compile: %v", err))
		}
	})
	return schemaCtx, schemaValue
}

// ValidateManifest checks raw manifest bytes against #Manifest.
func ValidateManifest(data []byte, filename string) []ValidationError {
	return validate(data, filename, "#Manifest", ErrManifestSchema)
}

// ValidatePackage checks raw font-build bytes against #Package.
func ValidatePackage(data []byte, filename string) []ValidationError {
	return validate(data, filename, "#Package", ErrPackageSchema)
}

func validate(data []byte, filename, definition, code string) []ValidationError {
	ctx, schema := loadSchema()

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return convertCUEErrors(err, ErrSyntax)
	}

	unified := schema.LookupPath(cue.ParsePath(definition)).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return convertCUEErrors(err, code)
	}
	return nil
}

// convertCUEErrors flattens a CUE error list into ValidationErrors, keeping
// the data file position when CUE reports one.
func convertCUEErrors(err error, code string) []ValidationError {
	var out []ValidationError
	for _, e := range errors.Errors(err) {
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
			Code:    code,
		}
		if ve.Field == "" {
			ve.Field = "document"
		}
		for _, pos := range errors.Positions(e) {
			if pos.IsValid() && pos.Filename() != "schema.cue" {
				ve.Line = pos.Line()
				break
			}
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Field: "document", Message: err.Error(), Code: code})
	}
	return out
}

// CheckUnique reports records sharing a name or a codepoint.
// Returns all errors found (does not fail-fast).
func CheckUnique(m icon.Manifest) []ValidationError {
	var errs []ValidationError
	names := make(map[string]int, len(m))
	codepoints := make(map[string]int, len(m))

	for i, rec := range m {
		if first, ok := names[rec.Name]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%d.name", i),
				Message: fmt.Sprintf("name %q already used by record %d", rec.Name, first),
				Code:    ErrDuplicateName,
			})
		} else {
			names[rec.Name] = i
		}

		if rec.Codepoint == "" {
			continue
		}
		if first, ok := codepoints[rec.Codepoint]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%d.codepoint", i),
				Message: fmt.Sprintf("codepoint %s already used by %q", rec.Codepoint, m[first].Name),
				Code:    ErrDuplicateCodepoint,
			})
		} else {
			codepoints[rec.Codepoint] = i
		}
	}
	return errs
}
