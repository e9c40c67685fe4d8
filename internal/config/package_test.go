package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLoadPackage_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font-build.json")

	f, err := LoadPackage(path, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, Defaults(fixedNow), f.Package)
	assert.True(t, f.Changed)
	assert.Equal(t, "2024-03-01T12:00:00Z", f.Package.Family.Date)

	written, err := f.WriteIfChanged()
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Merged, data)
}

func TestLoadPackage_PartialFileKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font-build.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "name": "my-icons",
  "version": "2.1",
  "family": {"prefix": "mi", "font": {"name": "My Icons"}},
  "homepage": "https://my.example"
}`), 0o644))

	f, err := LoadPackage(path, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "my-icons", f.Package.Name)
	assert.Equal(t, "2.1", f.Package.Version)
	assert.Equal(t, "mi", f.Package.Family.Prefix)
	assert.Equal(t, "My Icons", f.Package.Family.Font.Name)
	assert.Equal(t, "IconFont", f.Package.Family.Font.Family, "missing nested member filled")
	assert.Equal(t, "iconfont", f.Package.Family.FileName)
	assert.True(t, f.Changed)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(f.Merged, &raw))
	assert.Equal(t, "https://my.example", raw["homepage"], "unknown members survive")
}

func TestLoadPackage_CompleteFileIsNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font-build.json")

	first, err := LoadPackage(path, fixedNow)
	require.NoError(t, err)
	_, err = first.WriteIfChanged()
	require.NoError(t, err)

	second, err := LoadPackage(path, fixedNow.Add(48*time.Hour))
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Package.Family.Date, second.Package.Family.Date, "date is stamped once")

	written, err := second.WriteIfChanged()
	require.NoError(t, err)
	assert.False(t, written)
}

func TestLoadPackage_FormattingIsNotAChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font-build.json")

	first, err := LoadPackage(path, fixedNow)
	require.NoError(t, err)

	var compact bytes.Buffer
	require.NoError(t, json.Compact(&compact, first.Merged))
	require.NoError(t, os.WriteFile(path, compact.Bytes(), 0o644))

	second, err := LoadPackage(path, fixedNow)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Package, second.Package)

	written, err := second.WriteIfChanged()
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, compact.Bytes(), data, "hand formatting is kept")
}

func TestLoadPackage_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font-build.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": `), 0o644))

	_, err := LoadPackage(path, fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse")
}

func TestLoadPackage_SchemaViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font-build.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"family": {"prefix": "Bad Prefix"}}`), 0o644))

	_, err := LoadPackage(path, fixedNow)
	require.Error(t, err)

	var invalid *InvalidPackageError
	require.True(t, errors.As(err, &invalid))
	assert.NotEmpty(t, invalid.Errors)
	assert.Contains(t, err.Error(), path)
}

func TestPackage_SemVer(t *testing.T) {
	p := Package{Version: "3.4"}
	v := p.SemVer()
	assert.Equal(t, 3, v.Major)
	assert.Equal(t, 4, v.Minor)
	assert.Equal(t, 0, v.Patch)
}

func TestMergeMissing(t *testing.T) {
	dst := map[string]any{
		"a": "keep",
		"n": map[string]any{"x": 1.0},
		"s": "scalar wins over object",
	}
	src := map[string]any{
		"a": "default",
		"b": "added",
		"n": map[string]any{"x": 2.0, "y": 3.0},
		"s": map[string]any{"z": true},
	}

	mergeMissing(dst, src)

	assert.Equal(t, map[string]any{
		"a": "keep",
		"b": "added",
		"n": map[string]any{"x": 1.0, "y": 3.0},
		"s": "scalar wins over object",
	}, dst)
}
