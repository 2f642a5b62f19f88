// Package tension keeps the GPU data a tension shader needs in sync with a
// deformable mesh: baked edge adjacency, rest-pose edge vectors and the live
// deformed vertex buffer.
//
// A Deformer is driven by host lifecycle events (Activate, Reconfigure,
// PerFrameUpdate, TearDown, ForceRebake) from a single thread. It owns the
// baked state and, through gpu.Buffers, every buffer it creates.
package tension

import (
	"errors"

	"github.com/Faultbox/midgard-tension/pkg/edgegraph"
	"github.com/Faultbox/midgard-tension/pkg/meshdata"
)

var (
	// ErrNoMesh is returned when no mesh is assigned or the source yields none.
	ErrNoMesh = errors.New("tension: no mesh assigned")
	// ErrNoVertexSource is returned when no deformed vertex source is assigned.
	ErrNoVertexSource = errors.New("tension: no vertex source assigned")
	// ErrNoDevice is returned when no GPU device is assigned.
	ErrNoDevice = errors.New("tension: no device assigned")
	// ErrNotReady is returned by PerFrameUpdate outside the Ready state.
	ErrNotReady = errors.New("tension: not ready")
	// ErrReentrant is returned when PerFrameUpdate is entered twice.
	ErrReentrant = errors.New("tension: frame update already in progress")
	// ErrReloading is returned by Activate between BeginReload and EndReload.
	ErrReloading = errors.New("tension: host reload in progress")
	// ErrDetached is returned by ParameterSet.ForcePush without a store.
	ErrDetached = errors.New("tension: parameters not attached to a property store")
)

// Property names written by the Deformer besides the buffers.
const (
	PropVertexCount    = "_VertexCount"
	PropVertexStride   = "_VertexStride"
	PropTransformScale = "_TransformScale"
)

// State is the lifecycle state of a Deformer.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateTornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// MeshSource resolves the mesh currently assigned to the deformer.
type MeshSource interface {
	Mesh() (*meshdata.Snapshot, error)
}

// MeshFunc adapts a function to MeshSource.
type MeshFunc func() (*meshdata.Snapshot, error)

func (f MeshFunc) Mesh() (*meshdata.Snapshot, error) { return f() }

// StaticMesh is a MeshSource that always returns the same snapshot.
type StaticMesh struct {
	Snapshot *meshdata.Snapshot
}

func (m StaticMesh) Mesh() (*meshdata.Snapshot, error) { return m.Snapshot, nil }

// BakedState is the result of baking one mesh snapshot.
type BakedState struct {
	Adjacency  edgegraph.Adjacency
	RestDeltas [][3]float32
	MeshID     meshdata.Identity
	Baked      bool
}
