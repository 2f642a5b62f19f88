package meshdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileMesh is the on-disk YAML layout of a mesh fixture.
type fileMesh struct {
	Name      string       `yaml:"name"`
	Positions [][3]float32 `yaml:"positions"`
	Triangles []uint32     `yaml:"triangles"`
}

// LoadFile reads a YAML mesh file. Every call yields a new identity, so
// reloading an unchanged file still counts as a mesh reassignment.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if snap.Name == "" {
		snap.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return snap, nil
}

// Parse decodes a YAML mesh and validates it.
func Parse(data []byte) (*Snapshot, error) {
	var fm fileMesh
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, err
	}
	snap := New(fm.Name, fm.Positions, fm.Triangles)
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// GridPrefix marks a generated grid reference such as "grid:8x4".
const GridPrefix = "grid:"

// Open resolves a mesh reference: either GridPrefix followed by
// <cols>x<rows>, or the path of a YAML mesh file.
func Open(ref string) (*Snapshot, error) {
	size, ok := strings.CutPrefix(ref, GridPrefix)
	if !ok {
		return LoadFile(ref)
	}
	cols, rows, found := strings.Cut(size, "x")
	if !found {
		return nil, fmt.Errorf("grid size %q: want <cols>x<rows>", size)
	}
	nx, err := strconv.Atoi(cols)
	if err != nil || nx < 1 {
		return nil, fmt.Errorf("grid columns %q: must be a positive integer", cols)
	}
	ny, err := strconv.Atoi(rows)
	if err != nil || ny < 1 {
		return nil, fmt.Errorf("grid rows %q: must be a positive integer", rows)
	}
	return Grid(ref, nx, ny), nil
}
