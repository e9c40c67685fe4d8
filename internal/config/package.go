// Package config loads the three configuration layers of a build: the
// font-build file (package metadata rendered into outputs), environment
// settings for external tools, and the optional iconfont.yaml project file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/roach88/iconfont/internal/icon"
	"github.com/roach88/iconfont/internal/schema"
)

// Package is the font-build file.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Family  Family `json:"family"`
}

// Family describes the font and how it is published.
type Family struct {
	Prefix   string `json:"prefix"`
	Icon     string `json:"icon"`
	FileName string `json:"fileName"`
	Font     Font   `json:"font"`
	Colors   Colors `json:"colors"`
	NpmFont  string `json:"npmFont"`
	NpmJS    string `json:"npmJS"`
	NpmSVG   string `json:"npmSVG"`
	Website  string `json:"website"`
	Date     string `json:"date"`
}

// Font names the generated font.
type Font struct {
	Name   string `json:"name"`
	Family string `json:"family"`
	Weight string `json:"weight"`
}

// Colors are the brand colors used by the preview page and SCSS variables.
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// SemVer returns the parsed package version.
func (p Package) SemVer() icon.Version {
	v, _ := icon.ParseVersion(p.Version)
	return v
}

// Defaults returns the values merged into a missing or partial font-build
// file. now stamps the creation date.
func Defaults(now time.Time) Package {
	return Package{
		Name:    "icon-font",
		Version: "0.1.0",
		Family: Family{
			Prefix:   "icon",
			Icon:     "vector-square",
			FileName: "iconfont",
			Font: Font{
				Name:   "Icon Font",
				Family: "IconFont",
				Weight: "normal",
			},
			Colors: Colors{
				Primary:   "#2196F3",
				Secondary: "#FFFFFF",
			},
			NpmFont: "@icon-font/font",
			NpmJS:   "@icon-font/js",
			NpmSVG:  "@icon-font/svg",
			Website: "example.com",
			Date:    now.UTC().Format(time.RFC3339),
		},
	}
}

// PackageFile is a loaded font-build file.
type PackageFile struct {
	Path    string
	Package Package

	// Merged is the on-disk form after merging defaults.
	Merged []byte

	// Changed is true when Merged differs from the bytes on disk (or the
	// file is missing).
	Changed bool
}

// InvalidPackageError reports a font-build file that violates the schema.
type InvalidPackageError struct {
	Path   string
	Errors []schema.ValidationError
}

func (e *InvalidPackageError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("invalid font-build file %q", e.Path)
	}
	return fmt.Sprintf("invalid font-build file %q: %s", e.Path, e.Errors[0].Error())
}

// LoadPackage reads the font-build file and merges defaults into it.
// Members the file already has always win, including members this tool
// does not know about. Nothing is written; call WriteIfChanged.
func LoadPackage(path string, now time.Time) (*PackageFile, error) {
	onDisk, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read font-build file: %w", err)
	}

	// Formatting alone never triggers a rewrite: compare canonical forms.
	current := map[string]any{}
	var canonical []byte
	if len(bytes.TrimSpace(onDisk)) > 0 {
		if err := json.Unmarshal(onDisk, &current); err != nil {
			return nil, fmt.Errorf("unable to parse %q: %w", path, err)
		}
		if canonical, err = marshalIndent(current); err != nil {
			return nil, fmt.Errorf("serialize font-build file: %w", err)
		}
	}

	defaults, err := toMap(Defaults(now))
	if err != nil {
		return nil, err
	}
	mergeMissing(current, defaults)

	merged, err := marshalIndent(current)
	if err != nil {
		return nil, fmt.Errorf("serialize font-build file: %w", err)
	}

	if errs := schema.ValidatePackage(merged, path); len(errs) > 0 {
		return nil, &InvalidPackageError{Path: path, Errors: errs}
	}

	var pkg Package
	if err := json.Unmarshal(merged, &pkg); err != nil {
		return nil, fmt.Errorf("decode font-build file: %w", err)
	}

	return &PackageFile{
		Path:    path,
		Package: pkg,
		Merged:  merged,
		Changed: !bytes.Equal(canonical, merged),
	}, nil
}

// WriteIfChanged writes the merged form back. Returns true if written.
func (f *PackageFile) WriteIfChanged() (bool, error) {
	if !f.Changed {
		return false, nil
	}
	if err := os.WriteFile(f.Path, f.Merged, 0o644); err != nil {
		return false, fmt.Errorf("write font-build file: %w", err)
	}
	f.Changed = false
	return true, nil
}

// mergeMissing copies keys from src into dst where dst lacks them,
// recursing into nested objects.
func mergeMissing(dst, src map[string]any) {
	for k, sv := range src {
		dv, ok := dst[k]
		if !ok {
			dst[k] = sv
			continue
		}
		dm, dok := dv.(map[string]any)
		sm, sok := sv.(map[string]any)
		if dok && sok {
			mergeMissing(dm, sm)
		}
	}
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// marshalIndent writes objects with sorted keys, two-space indent, no HTML
// escaping and a trailing newline.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
