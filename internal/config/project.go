package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is looked up in the --dir folder.
const ProjectFileName = "iconfont.yaml"

// Project holds per-project defaults for CLI flags. Relative paths are
// resolved against the project directory. Explicit flags always win.
type Project struct {
	Meta    string `yaml:"meta,omitempty"`
	Font    string `yaml:"font,omitempty"`
	SVG     string `yaml:"svg,omitempty"`
	Dist    string `yaml:"dist,omitempty"`
	Mode    string `yaml:"mode,omitempty"`
	FontSVG *bool  `yaml:"fontSvg,omitempty"`
	History string `yaml:"history,omitempty"`
}

// LoadProject reads dir/iconfont.yaml. A missing file yields an empty
// Project. Unknown keys are rejected so typos surface.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var p Project
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &p, nil
}
