// Package meshdata provides read-only mesh snapshots used as bake input.
package meshdata

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Faultbox/midgard-tension/pkg/math"
)

// ErrInvalidMesh is returned when a snapshot fails integrity checks.
var ErrInvalidMesh = errors.New("invalid mesh")

// Identity distinguishes one snapshot from another regardless of content.
// Zero is never assigned.
type Identity uint64

var lastIdentity atomic.Uint64

func nextIdentity() Identity {
	return Identity(lastIdentity.Add(1))
}

// Snapshot is an immutable view of a mesh: rest positions and a triangle list.
type Snapshot struct {
	ID        Identity
	Name      string
	Positions [][3]float32
	Triangles []uint32 // triples of vertex indices
}

// New creates a snapshot with a fresh identity.
// The slices are retained, callers must not modify them afterwards.
func New(name string, positions [][3]float32, triangles []uint32) *Snapshot {
	return &Snapshot{
		ID:        nextIdentity(),
		Name:      name,
		Positions: positions,
		Triangles: triangles,
	}
}

// VertexCount returns the number of vertices.
func (s *Snapshot) VertexCount() int {
	return len(s.Positions)
}

// TriangleCount returns the number of triangles.
func (s *Snapshot) TriangleCount() int {
	return len(s.Triangles) / 3
}

// Validate checks that the snapshot can be baked: it has vertices, the
// triangle list is made of whole triples and every index is in range.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidMesh)
	}
	if len(s.Positions) == 0 {
		return fmt.Errorf("%w: %q has no vertices", ErrInvalidMesh, s.Name)
	}
	if len(s.Triangles)%3 != 0 {
		return fmt.Errorf("%w: %q index count %d is not a multiple of 3", ErrInvalidMesh, s.Name, len(s.Triangles))
	}
	n := uint32(len(s.Positions))
	for i, idx := range s.Triangles {
		if idx >= n {
			return fmt.Errorf("%w: %q index %d at %d out of range [0,%d)", ErrInvalidMesh, s.Name, idx, i, n)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the positions.
func (s *Snapshot) Bounds() (min, max [3]float32) {
	if len(s.Positions) == 0 {
		return min, max
	}
	lo, hi := math.Vec3(s.Positions[0]), math.Vec3(s.Positions[0])
	for _, p := range s.Positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// Grid builds a flat nx*ny quad grid in the XY plane spanning [0,1]x[0,1],
// two triangles per cell.
func Grid(name string, nx, ny int) *Snapshot {
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	cols := nx + 1
	positions := make([][3]float32, 0, cols*(ny+1))
	for y := 0; y <= ny; y++ {
		for x := 0; x <= nx; x++ {
			positions = append(positions, [3]float32{float32(x) / float32(nx), float32(y) / float32(ny), 0})
		}
	}

	triangles := make([]uint32, 0, nx*ny*6)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			i0 := uint32(y*cols + x)
			i1 := i0 + 1
			i2 := i0 + uint32(cols)
			i3 := i2 + 1
			triangles = append(triangles, i0, i1, i2, i1, i3, i2)
		}
	}
	return New(name, positions, triangles)
}
