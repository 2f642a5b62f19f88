package edgegraph

import (
	"fmt"

	"github.com/Faultbox/midgard-tension/pkg/math"
)

// RestDeltas returns positions[owner] - positions[neighbor] for every
// directed entry of adj, in the same order as its trailing region, so one
// offset indexes both arrays.
func RestDeltas(positions [][3]float32, adj Adjacency) ([][3]float32, error) {
	if len(positions) != adj.VertexCount() {
		return nil, fmt.Errorf("%w: %d positions, adjacency covers %d vertices", ErrSizeMismatch, len(positions), adj.VertexCount())
	}
	if adj.Vertices > len(adj.Encoding) {
		return nil, fmt.Errorf("%w: %d vertices for encoding of length %d", ErrSizeMismatch, adj.Vertices, len(adj.Encoding))
	}
	if adj.Vertices > 0 && int(adj.Encoding[adj.Vertices-1]) != adj.EdgeCount() {
		return nil, fmt.Errorf("%w: final offset %d, trailing length %d", ErrSizeMismatch, adj.Encoding[adj.Vertices-1], adj.EdgeCount())
	}

	edges := adj.Edges()
	deltas := make([][3]float32, 0, len(edges))
	var start uint32
	for i := 0; i < adj.Vertices; i++ {
		end := adj.Encoding[i]
		if end < start || int(end) > len(edges) {
			return nil, fmt.Errorf("%w: vertex %d range [%d,%d) outside trailing region", ErrSizeMismatch, i, start, end)
		}
		p := math.Vec3(positions[i])
		for _, n := range edges[start:end] {
			if int(n) >= len(positions) {
				return nil, fmt.Errorf("%w: neighbor %d of vertex %d has no position", ErrSizeMismatch, n, i)
			}
			deltas = append(deltas, p.Sub(positions[n]))
		}
		start = end
	}
	return deltas, nil
}
