package meshdata

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsDistinctIdentity(t *testing.T) {
	pos := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tri := []uint32{0, 1, 2}

	a := New("a", pos, tri)
	b := New("a", pos, tri)

	assert.NotZero(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID, "content-equal snapshots must not share identity")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    *Snapshot
		wantErr bool
	}{
		{"nil", nil, true},
		{"no vertices", New("empty", nil, nil), true},
		{"partial triangle", New("partial", [][3]float32{{}, {}, {}}, []uint32{0, 1}), true},
		{"index out of range", New("oob", [][3]float32{{}, {}, {}}, []uint32{0, 1, 3}), true},
		{"isolated vertices only", New("points", [][3]float32{{}, {}}, nil), false},
		{"valid triangle", New("tri", [][3]float32{{}, {}, {}}, []uint32{0, 1, 2}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidMesh))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGrid(t *testing.T) {
	g := Grid("grid", 3, 2)

	assert.Equal(t, 12, g.VertexCount())
	assert.Equal(t, 12, g.TriangleCount())
	require.NoError(t, g.Validate())

	min, max := g.Bounds()
	assert.Equal(t, [3]float32{0, 0, 0}, min)
	assert.Equal(t, [3]float32{1, 1, 0}, max)
}

func TestLoadFile(t *testing.T) {
	snap, err := LoadFile(filepath.Join("testdata", "quad.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "quad", snap.Name)
	assert.Equal(t, 4, snap.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2}, snap.Triangles)
	assert.Equal(t, [3]float32{1, 1, 0}, snap.Positions[3])

	again, err := LoadFile(filepath.Join("testdata", "quad.yaml"))
	require.NoError(t, err)
	assert.NotEqual(t, snap.ID, again.ID)
}

func TestParseRejectsBadIndices(t *testing.T) {
	_, err := Parse([]byte("positions: [[0,0,0],[1,0,0]]\ntriangles: [0, 1, 2]\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMesh)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/mesh.yaml")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	g, err := Open("grid:4x2")
	require.NoError(t, err)
	assert.Equal(t, 15, g.VertexCount())
	assert.Equal(t, "grid:4x2", g.Name)

	f, err := Open(filepath.Join("testdata", "quad.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, f.VertexCount())

	for _, bad := range []string{"grid:4", "grid:ax2", "grid:0x3", "grid:3x-1"} {
		_, err := Open(bad)
		assert.Error(t, err, bad)
	}
}
