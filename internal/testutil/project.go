package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Glyph is a minimal valid icon.
const Glyph = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M2 2h20v20H2z"/></svg>`

// Project is an icon project laid out in a temp dir: meta.json,
// font-build.json and an svg folder.
type Project struct {
	Dir string
}

// NewProject creates an empty project with an svg folder.
func NewProject(t *testing.T) *Project {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "svg"), 0o755))
	return &Project{Dir: dir}
}

// Meta is the default manifest path.
func (p *Project) Meta() string { return filepath.Join(p.Dir, "meta.json") }

// Font is the default font-build path.
func (p *Project) Font() string { return filepath.Join(p.Dir, "font-build.json") }

// SVG is the default svg folder.
func (p *Project) SVG() string { return filepath.Join(p.Dir, "svg") }

// Dist is the default output folder.
func (p *Project) Dist() string { return filepath.Join(p.Dir, "dist") }

// AddGlyph writes svg/<fileName> with Glyph content.
func (p *Project) AddGlyph(t *testing.T, fileName string) {
	t.Helper()
	p.AddFile(t, filepath.Join("svg", fileName), Glyph)
}

// AddFile writes a file relative to the project dir.
func (p *Project) AddFile(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(p.Dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Read returns the content of a file relative to the project dir.
func (p *Project) Read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.Dir, rel))
	require.NoError(t, err)
	return string(data)
}

// Files lists the file names in a folder relative to the project dir.
func (p *Project) Files(t *testing.T, rel string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(p.Dir, rel))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
