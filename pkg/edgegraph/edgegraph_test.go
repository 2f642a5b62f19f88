package edgegraph

import (
	"errors"
	"slices"
	"testing"

	"github.com/Faultbox/midgard-tension/pkg/meshdata"
)

// undirectedEdges counts distinct undirected, non-degenerate edges.
func undirectedEdges(triangles []uint32) int {
	seen := make(map[[2]uint32]bool)
	add := func(a, b uint32) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		seen[[2]uint32{a, b}] = true
	}
	for t := 0; t+2 < len(triangles); t += 3 {
		a, b, c := triangles[t], triangles[t+1], triangles[t+2]
		add(a, b)
		add(b, c)
		add(c, a)
	}
	return len(seen)
}

func checkInvariants(t *testing.T, vertexCount int, triangles []uint32, adj Adjacency) {
	t.Helper()

	if err := adj.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if len(adj.Encoding) != vertexCount+adj.EdgeCount() {
		t.Errorf("encoding length = %d, want %d", len(adj.Encoding), vertexCount+adj.EdgeCount())
	}
	if want := 2 * undirectedEdges(triangles); adj.EdgeCount() != want {
		t.Errorf("EdgeCount() = %d, want %d", adj.EdgeCount(), want)
	}
	if vertexCount > 0 && int(adj.Offsets()[vertexCount-1]) != adj.EdgeCount() {
		t.Errorf("last offset = %d, want %d", adj.Offsets()[vertexCount-1], adj.EdgeCount())
	}

	for i := 0; i < vertexCount; i++ {
		if i > 0 && adj.Offsets()[i] < adj.Offsets()[i-1] {
			t.Errorf("offsets[%d] = %d < offsets[%d] = %d", i, adj.Offsets()[i], i-1, adj.Offsets()[i-1])
		}
		list := adj.Neighbors(i)
		for k, j := range list {
			if slices.Contains(list[k+1:], j) {
				t.Errorf("vertex %d lists neighbor %d twice", i, j)
			}
			if !slices.Contains(adj.Neighbors(int(j)), uint32(i)) {
				t.Errorf("vertex %d lists %d but not vice versa", i, j)
			}
		}
	}
}

func TestBakeSingleTriangle(t *testing.T) {
	adj := Bake(3, []uint32{0, 1, 2})

	if adj.EdgeCount() != 6 {
		t.Fatalf("EdgeCount() = %d, want 6", adj.EdgeCount())
	}
	wantOffsets := []uint32{2, 4, 6}
	if !slices.Equal(adj.Offsets(), wantOffsets) {
		t.Errorf("Offsets() = %v, want %v", adj.Offsets(), wantOffsets)
	}
	checkInvariants(t, 3, []uint32{0, 1, 2}, adj)
}

func TestBakeSharedEdgeDeduplicated(t *testing.T) {
	tris := []uint32{0, 1, 2, 1, 3, 2}
	adj := Bake(4, tris)

	if adj.EdgeCount() != 10 {
		t.Errorf("EdgeCount() = %d, want 10 (5 undirected edges)", adj.EdgeCount())
	}
	checkInvariants(t, 4, tris, adj)

	// Vertices 1 and 2 sit on the shared edge and see all three others.
	for _, v := range []int{1, 2} {
		if n := len(adj.Neighbors(v)); n != 3 {
			t.Errorf("vertex %d has %d neighbors, want 3", v, n)
		}
	}
}

func TestBakeIsolatedVertex(t *testing.T) {
	tris := []uint32{0, 2, 3}
	adj := Bake(5, tris)

	checkInvariants(t, 5, tris, adj)
	for _, v := range []int{1, 4} {
		if n := len(adj.Neighbors(v)); n != 0 {
			t.Errorf("isolated vertex %d has %d neighbors", v, n)
		}
	}
	if adj.Offsets()[1] != adj.Offsets()[0] {
		t.Errorf("isolated vertex 1 advanced the offset: %v", adj.Offsets())
	}
}

func TestBakeDegenerateTriangleSkipsSelfPairs(t *testing.T) {
	tris := []uint32{0, 0, 1, 2, 2, 2}
	adj := Bake(3, tris)

	checkInvariants(t, 3, tris, adj)
	if adj.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", adj.EdgeCount())
	}
	if len(adj.Neighbors(2)) != 0 {
		t.Errorf("fully degenerate triangle produced neighbors %v", adj.Neighbors(2))
	}
}

func TestBakeEmpty(t *testing.T) {
	adj := Bake(0, nil)
	if len(adj.Encoding) != 0 {
		t.Errorf("Encoding = %v, want empty", adj.Encoding)
	}
	if err := adj.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBakeGrid(t *testing.T) {
	g := meshdata.Grid("grid", 6, 4)
	adj := Bake(g.VertexCount(), g.Triangles)
	checkInvariants(t, g.VertexCount(), g.Triangles, adj)

	// A grid with diagonals has (nx*(ny+1)) + (ny*(nx+1)) + nx*ny edges.
	want := 2 * (6*5 + 4*7 + 6*4)
	if adj.EdgeCount() != want {
		t.Errorf("EdgeCount() = %d, want %d", adj.EdgeCount(), want)
	}
}

// fan returns a closed triangle fan: hub 0 surrounded by rim vertices 1..n.
func fan(n int) []uint32 {
	tris := make([]uint32, 0, n*3)
	for i := 1; i <= n; i++ {
		next := i%n + 1
		tris = append(tris, 0, uint32(i), uint32(next))
	}
	return tris
}

func TestBakeHighValenceFan(t *testing.T) {
	const n = 100000
	tris := fan(n)
	adj := Bake(n+1, tris)

	hub := adj.Neighbors(0)
	if len(hub) != n {
		t.Fatalf("hub has %d neighbors, want %d", len(hub), n)
	}
	for i, nb := range hub {
		if nb != uint32(i+1) {
			t.Fatalf("hub neighbor %d = %d, want %d (ascending)", i, nb, i+1)
		}
	}
	for _, v := range []int{1, n / 2, n} {
		if got := len(adj.Neighbors(v)); got != 3 {
			t.Errorf("rim vertex %d has %d neighbors, want 3", v, got)
		}
	}
	if adj.EdgeCount() != 2*undirectedEdges(tris) {
		t.Errorf("EdgeCount() = %d, want %d", adj.EdgeCount(), 2*undirectedEdges(tris))
	}
	if err := adj.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func BenchmarkBakeFan(b *testing.B) {
	tris := fan(50000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Bake(50001, tris)
	}
}

func TestBakeIsDeterministic(t *testing.T) {
	g := meshdata.Grid("grid", 5, 5)
	a := Bake(g.VertexCount(), g.Triangles)
	b := Bake(g.VertexCount(), g.Triangles)

	if !slices.Equal(a.Encoding, b.Encoding) {
		t.Error("rebaking the same snapshot changed the encoding")
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name string
		adj  Adjacency
	}{
		{"too many vertices", Adjacency{Encoding: []uint32{1}, Vertices: 2}},
		{"decreasing offsets", Adjacency{Encoding: []uint32{2, 1, 1, 0, 0}, Vertices: 2}},
		{"final offset mismatch", Adjacency{Encoding: []uint32{1, 1, 1, 0}, Vertices: 2}},
		{"self loop", Adjacency{Encoding: []uint32{1, 2, 0, 0}, Vertices: 2}},
		{"out of range neighbor", Adjacency{Encoding: []uint32{1, 2, 5, 0}, Vertices: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.adj.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestRestDeltasSingleTriangle(t *testing.T) {
	pos := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	adj := Bake(3, []uint32{0, 1, 2})

	deltas, err := RestDeltas(pos, adj)
	if err != nil {
		t.Fatalf("RestDeltas() error = %v", err)
	}
	if len(deltas) != adj.EdgeCount() {
		t.Fatalf("len(deltas) = %d, want %d", len(deltas), adj.EdgeCount())
	}

	start, end := adj.Range(0)
	for k := start; k < end; k++ {
		n := adj.Edges()[k]
		want := [3]float32{-pos[n][0], -pos[n][1], -pos[n][2]}
		if deltas[k] != want {
			t.Errorf("delta[%d] (0->%d) = %v, want %v", k, n, deltas[k], want)
		}
	}
}

func TestRestDeltasMatchOwnerMinusNeighbor(t *testing.T) {
	g := meshdata.Grid("grid", 4, 3)
	for i := range g.Positions {
		g.Positions[i][2] = float32(i) * 0.25
	}
	adj := Bake(g.VertexCount(), g.Triangles)

	deltas, err := RestDeltas(g.Positions, adj)
	if err != nil {
		t.Fatalf("RestDeltas() error = %v", err)
	}
	if len(deltas) != adj.EdgeCount() {
		t.Fatalf("len(deltas) = %d, want %d", len(deltas), adj.EdgeCount())
	}

	for i := 0; i < adj.VertexCount(); i++ {
		start, end := adj.Range(i)
		for k := start; k < end; k++ {
			p, q := g.Positions[i], g.Positions[adj.Edges()[k]]
			want := [3]float32{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
			if deltas[k] != want {
				t.Errorf("delta[%d] = %v, want %v", k, deltas[k], want)
			}
		}
	}

	again, err := RestDeltas(g.Positions, Bake(g.VertexCount(), g.Triangles))
	if err != nil {
		t.Fatalf("RestDeltas() rebake error = %v", err)
	}
	if !slices.Equal(deltas, again) {
		t.Error("rebaking produced different rest deltas")
	}
}

func TestRestDeltasSizeMismatch(t *testing.T) {
	adj := Bake(3, []uint32{0, 1, 2})

	_, err := RestDeltas([][3]float32{{0, 0, 0}, {1, 0, 0}}, adj)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("RestDeltas() error = %v, want ErrSizeMismatch", err)
	}

	broken := Adjacency{Encoding: []uint32{2, 4, 9, 1, 2, 0, 2, 0, 1}, Vertices: 3}
	_, err = RestDeltas([][3]float32{{}, {}, {}}, broken)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("RestDeltas() on inconsistent encoding error = %v, want ErrSizeMismatch", err)
	}
}
