// Package edgegraph bakes per-vertex edge adjacency and rest-pose edge
// vectors from a triangle list.
//
// The adjacency encoding is a single uint32 slice laid out for direct GPU
// upload:
//
//	[ offsets[0..V) | neighbors[0..E) ]
//
// offsets[i] is the exclusive end of vertex i's neighbor list inside the
// trailing region; the list starts at offsets[i-1] (0 for vertex 0). Every
// undirected edge appears twice, once from each end.
package edgegraph

import (
	"errors"
	"fmt"
	"slices"
)

// ErrSizeMismatch is returned when positions and an adjacency encoding
// disagree on the vertex count, or when the encoding is inconsistent.
var ErrSizeMismatch = errors.New("size mismatch")

// Adjacency is a baked edge graph.
type Adjacency struct {
	Encoding []uint32
	Vertices int
}

// Bake builds the adjacency encoding for vertexCount vertices from a flat
// triangle index list. Indices must be in range and len(triangles) must be a
// multiple of 3; callers validate the mesh beforehand.
func Bake(vertexCount int, triangles []uint32) Adjacency {
	tris := len(triangles) / 3

	// Triangles incident to each vertex, as a CSR table.
	start := make([]int, vertexCount+1)
	for _, idx := range triangles[:tris*3] {
		start[idx+1]++
	}
	for i := 1; i <= vertexCount; i++ {
		start[i] += start[i-1]
	}
	incident := make([]int, tris*3)
	cursor := slices.Clone(start[:vertexCount])
	for t := 0; t < tris; t++ {
		for _, idx := range triangles[t*3 : t*3+3] {
			incident[cursor[idx]] = t
			cursor[idx]++
		}
	}

	// seen[n] == v+1 marks n as already listed for vertex v.
	seen := make([]int, vertexCount)
	enc := make([]uint32, vertexCount, vertexCount+tris*6)
	for v := 0; v < vertexCount; v++ {
		first := len(enc)
		for _, t := range incident[start[v]:start[v+1]] {
			for _, n := range triangles[t*3 : t*3+3] {
				if int(n) == v || seen[n] == v+1 {
					continue
				}
				seen[n] = v + 1
				enc = append(enc, n)
			}
		}
		slices.Sort(enc[first:])
		enc[v] = uint32(len(enc) - vertexCount)
	}

	return Adjacency{Encoding: enc, Vertices: vertexCount}
}

// VertexCount returns the number of vertices covered by the offsets table.
func (a Adjacency) VertexCount() int {
	return a.Vertices
}

// EdgeCount returns the number of directed entries in the trailing region.
func (a Adjacency) EdgeCount() int {
	return len(a.Encoding) - a.Vertices
}

// Offsets returns the offsets table.
func (a Adjacency) Offsets() []uint32 {
	return a.Encoding[:a.Vertices]
}

// Edges returns the trailing neighbor region.
func (a Adjacency) Edges() []uint32 {
	return a.Encoding[a.Vertices:]
}

// Range returns the [start, end) slice of vertex i's neighbors within Edges.
func (a Adjacency) Range(i int) (start, end uint32) {
	if i > 0 {
		start = a.Encoding[i-1]
	}
	return start, a.Encoding[i]
}

// Neighbors returns vertex i's neighbor list. The result aliases the encoding.
func (a Adjacency) Neighbors(i int) []uint32 {
	start, end := a.Range(i)
	return a.Edges()[start:end]
}

// Validate checks the structural invariants of the encoding: monotonic
// offsets, a final offset matching the trailing length, in-range neighbors
// and no self references.
func (a Adjacency) Validate() error {
	if a.Vertices < 0 || a.Vertices > len(a.Encoding) {
		return fmt.Errorf("%w: %d vertices for encoding of length %d", ErrSizeMismatch, a.Vertices, len(a.Encoding))
	}
	if a.Vertices == 0 {
		if len(a.Encoding) != 0 {
			return fmt.Errorf("%w: %d trailing entries without vertices", ErrSizeMismatch, len(a.Encoding))
		}
		return nil
	}

	offsets := a.Offsets()
	var prev uint32
	for i, off := range offsets {
		if off < prev {
			return fmt.Errorf("edgegraph: offset %d decreases (%d < %d)", i, off, prev)
		}
		prev = off
	}
	if int(prev) != a.EdgeCount() {
		return fmt.Errorf("%w: final offset %d, trailing length %d", ErrSizeMismatch, prev, a.EdgeCount())
	}

	for i := 0; i < a.Vertices; i++ {
		for _, n := range a.Neighbors(i) {
			if int(n) >= a.Vertices {
				return fmt.Errorf("edgegraph: vertex %d lists neighbor %d out of range", i, n)
			}
			if int(n) == i {
				return fmt.Errorf("edgegraph: vertex %d lists itself", i)
			}
		}
	}
	return nil
}
