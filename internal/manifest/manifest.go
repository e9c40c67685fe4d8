// Package manifest loads and persists the icon manifest (meta.json).
//
// The manifest is read once per run and written back at most once, and
// only when its serialized form changed. Comparison is against the
// canonical serialization of what was loaded, so a hand-formatted file that
// carries the same records is left untouched.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/iconfont/internal/icon"
	"github.com/roach88/iconfont/internal/schema"
)

// Document is a loaded manifest.
type Document struct {
	Path  string
	Icons icon.Manifest

	// Original is the canonical serialization of the loaded records,
	// nil when the file did not exist or was blank.
	Original []byte
}

// ParseError reports a manifest that is not valid JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidError reports a manifest that parses but violates the schema or
// carries duplicate names or codepoints.
type InvalidError struct {
	Path   string
	Errors []schema.ValidationError
}

func (e *InvalidError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid manifest %q: %s", e.Path, strings.Join(msgs, "; "))
}

// Load reads the manifest at path. A missing or blank file yields an empty
// manifest.
func Load(path string) (*Document, error) {
	doc := &Document{Path: path, Icons: icon.Manifest{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var icons icon.Manifest
	if err := json.Unmarshal(data, &icons); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if errs := schema.ValidateManifest(data, path); len(errs) > 0 {
		return nil, &InvalidError{Path: path, Errors: errs}
	}
	if errs := schema.CheckUnique(icons); len(errs) > 0 {
		return nil, &InvalidError{Path: path, Errors: errs}
	}

	original, err := Marshal(icons)
	if err != nil {
		return nil, fmt.Errorf("serialize manifest: %w", err)
	}

	if icons == nil {
		icons = icon.Manifest{}
	}
	doc.Icons = icons
	doc.Original = original
	return doc, nil
}

// Marshal returns the canonical on-disk form: a JSON array indented with two
// spaces, no HTML escaping, trailing newline. A nil manifest is written as [].
func Marshal(m icon.Manifest) ([]byte, error) {
	if m == nil {
		m = icon.Manifest{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sync writes current to path only if its serialization differs from
// original. Returns true if the file was written.
func Sync(path string, original []byte, current icon.Manifest) (bool, error) {
	data, err := Marshal(current)
	if err != nil {
		return false, fmt.Errorf("serialize manifest: %w", err)
	}
	if original != nil && bytes.Equal(data, original) {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write manifest: %w", err)
	}
	return true, nil
}

// Sync persists the document's current icons. On write, Original is updated
// so a second call is a no-op.
func (d *Document) Sync() (bool, error) {
	written, err := Sync(d.Path, d.Original, d.Icons)
	if err != nil || !written {
		return written, err
	}
	d.Original, err = Marshal(d.Icons)
	return true, err
}
