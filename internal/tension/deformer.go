package tension

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tension/internal/gpu"
	"github.com/Faultbox/midgard-tension/pkg/edgegraph"
	"github.com/Faultbox/midgard-tension/pkg/meshdata"
)

// Options configures a Deformer.
type Options struct {
	Mesh     MeshSource
	Vertices gpu.VertexSource
	Device   gpu.Device
	Store    gpu.PropertyStore

	// Scale returns the current transform scale; nil means unit scale.
	Scale func() [3]float32

	// PersistBake keeps the baked state across activations as long as the
	// mesh identity is unchanged. Without it every activation rebakes.
	PersistBake bool

	// Stretch and Squash are the initial parameter values. The zero value
	// selects DefaultParameters.
	Stretch Parameters
	Squash  Parameters

	Logger *zap.Logger
}

// Deformer sequences baking and buffer management for one mesh.
type Deformer struct {
	mesh     MeshSource
	vertices gpu.VertexSource
	device   gpu.Device
	store    gpu.PropertyStore
	scale    func() [3]float32
	persist  bool
	log      *zap.Logger

	buffers *gpu.Buffers
	baked   BakedState
	state   State

	stretch *ParameterSet
	squash  *ParameterSet

	inFrame bool

	reloading         bool
	resumeAfterReload bool
}

// New creates an uninitialized Deformer.
func New(opts Options) *Deformer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = gpu.NewPropertyBlock()
	}
	if opts.Stretch == (Parameters{}) {
		opts.Stretch = DefaultParameters()
	}
	if opts.Squash == (Parameters{}) {
		opts.Squash = DefaultParameters()
	}
	return &Deformer{
		mesh:     opts.Mesh,
		vertices: opts.Vertices,
		device:   opts.Device,
		store:    store,
		scale:    opts.Scale,
		persist:  opts.PersistBake,
		log:      log,
		buffers:  gpu.NewBuffers(opts.Device, log),
		stretch:  NewParameterSet(Stretch, opts.Stretch),
		squash:   NewParameterSet(Squash, opts.Squash),
	}
}

// State returns the current lifecycle state.
func (d *Deformer) State() State { return d.state }

// Stretch returns the stretch parameter set.
func (d *Deformer) Stretch() *ParameterSet { return d.stretch }

// Squash returns the squash parameter set.
func (d *Deformer) Squash() *ParameterSet { return d.squash }

// BakeInfo reports whether baked data exists and which mesh it came from.
func (d *Deformer) BakeInfo() (meshdata.Identity, bool) {
	return d.baked.MeshID, d.baked.Baked
}

// Baked returns the baked state. The slices must not be modified.
func (d *Deformer) Baked() BakedState { return d.baked }

// Buffers exposes the owned buffers for inspection.
func (d *Deformer) Buffers() *gpu.Buffers { return d.buffers }

// SetMeshSource reassigns the mesh. It takes effect on the next Activate,
// Reconfigure or ForceRebake.
func (d *Deformer) SetMeshSource(src MeshSource) { d.mesh = src }

// SetVertexSource reassigns the deformed vertex source.
func (d *Deformer) SetVertexSource(src gpu.VertexSource) { d.vertices = src }

// Activate bakes (or reuses the bake) and creates all buffers. It does
// nothing when already Ready. On failure no buffers are held and the state
// is unchanged.
func (d *Deformer) Activate() error {
	if d.state == StateReady {
		return nil
	}
	if d.reloading {
		return ErrReloading
	}
	snap, err := d.ensureMesh()
	if err != nil {
		return err
	}
	return d.activate(snap, false)
}

// Reconfigure handles a validation event. A changed mesh identity forces a
// rebake; otherwise a Ready deformer only refreshes its live vertex buffer,
// and is torn down if that fails. A deformer that is not Ready is fully
// activated.
func (d *Deformer) Reconfigure() error {
	snap, err := d.ensureMesh()
	if err != nil {
		return err
	}
	changed := d.baked.Baked && d.baked.MeshID != snap.ID

	if d.state != StateReady {
		if d.reloading {
			return ErrReloading
		}
		return d.activate(snap, changed)
	}
	if changed {
		d.log.Info("mesh reassigned, rebaking",
			zap.Uint64("from", uint64(d.baked.MeshID)),
			zap.Uint64("to", uint64(snap.ID)))
		return d.rebake(snap)
	}
	if err := d.refreshLive(); err != nil {
		d.tearDown()
		return err
	}
	return nil
}

// PerFrameUpdate refreshes the live vertex buffer and pushes it, the
// transform scale and changed parameters to the property store.
func (d *Deformer) PerFrameUpdate() error {
	if d.state != StateReady {
		d.log.Debug("frame update rejected", zap.Stringer("state", d.state))
		return fmt.Errorf("%w (state %s)", ErrNotReady, d.state)
	}
	if d.inFrame {
		return ErrReentrant
	}
	d.inFrame = true
	defer func() { d.inFrame = false }()

	if err := d.refreshLive(); err != nil {
		return err
	}
	d.store.SetVector(PropTransformScale, d.transformScale())
	d.stretch.flush()
	d.squash.flush()
	return nil
}

// TearDown releases every buffer and leaves the deformer inert until the
// next Activate. The baked state is kept. Calling it repeatedly is safe.
// A TearDown inside a reload boundary cancels the re-activation EndReload
// would otherwise perform.
func (d *Deformer) TearDown() {
	d.resumeAfterReload = false
	d.tearDown()
}

func (d *Deformer) tearDown() {
	d.release()
	if d.state != StateTornDown {
		d.log.Debug("torn down", zap.Stringer("from", d.state))
	}
	d.state = StateTornDown
}

// ForceRebake discards any reusable bake and recomputes it from the current
// mesh. A Ready deformer rebuilds its buffers; if that fails it is torn down.
func (d *Deformer) ForceRebake() error {
	snap, err := d.ensureMesh()
	if err != nil {
		return err
	}
	return d.rebake(snap)
}

// BeginReload tears the deformer down ahead of a host reload and remembers
// whether it should come back afterwards.
func (d *Deformer) BeginReload() {
	if !d.reloading {
		d.resumeAfterReload = d.state == StateReady
	}
	d.reloading = true
	d.tearDown()
}

// EndReload re-activates the deformer if it was Ready when the reload began.
func (d *Deformer) EndReload() error {
	if !d.reloading {
		return nil
	}
	d.reloading = false
	resume := d.resumeAfterReload
	d.resumeAfterReload = false
	if !resume {
		return nil
	}
	return d.Activate()
}

// ensureMesh resolves the mesh and checks it can be baked.
func (d *Deformer) ensureMesh() (*meshdata.Snapshot, error) {
	if d.mesh == nil {
		return nil, ErrNoMesh
	}
	snap, err := d.mesh.Mesh()
	if err != nil {
		return nil, fmt.Errorf("resolving mesh: %w", err)
	}
	if snap == nil {
		return nil, ErrNoMesh
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (d *Deformer) reusable(snap *meshdata.Snapshot) bool {
	return d.persist && d.baked.Baked && d.baked.MeshID == snap.ID
}

func (d *Deformer) bake(snap *meshdata.Snapshot) error {
	adj := edgegraph.Bake(snap.VertexCount(), snap.Triangles)
	deltas, err := edgegraph.RestDeltas(snap.Positions, adj)
	if err != nil {
		return fmt.Errorf("baking %q: %w", snap.Name, err)
	}
	d.baked = BakedState{
		Adjacency:  adj,
		RestDeltas: deltas,
		MeshID:     snap.ID,
		Baked:      true,
	}
	d.log.Info("mesh baked",
		zap.String("mesh", snap.Name),
		zap.Uint64("id", uint64(snap.ID)),
		zap.Int("vertices", adj.VertexCount()),
		zap.Int("edges", adj.EdgeCount()))
	return nil
}

func (d *Deformer) activate(snap *meshdata.Snapshot, forceBake bool) error {
	if d.vertices == nil {
		return ErrNoVertexSource
	}
	if d.device == nil {
		return ErrNoDevice
	}
	if forceBake || !d.reusable(snap) {
		if err := d.bake(snap); err != nil {
			return err
		}
	} else {
		d.log.Debug("reusing bake", zap.Uint64("id", uint64(snap.ID)))
	}

	if err := d.build(); err != nil {
		d.release()
		d.log.Warn("activation failed", zap.Error(err))
		return err
	}
	d.log.Debug("ready", zap.Stringer("from", d.state))
	d.state = StateReady
	return nil
}

// rebake bakes snap and, when Ready, rebuilds every buffer from it.
func (d *Deformer) rebake(snap *meshdata.Snapshot) error {
	if err := d.bake(snap); err != nil {
		return err
	}
	if d.state != StateReady {
		return nil
	}
	d.release()
	if err := d.build(); err != nil {
		d.release()
		d.state = StateTornDown
		d.log.Warn("rebuild failed, torn down", zap.Error(err))
		return err
	}
	return nil
}

// build creates the baked-data buffers and the first live vertex buffer,
// binds them and attaches the parameter sets.
func (d *Deformer) build() error {
	if err := d.buffers.CreateAll(d.baked.Adjacency.Encoding, d.baked.RestDeltas); err != nil {
		return err
	}
	if err := d.buffers.RefreshLiveVertexBuffer(d.vertices); err != nil {
		return err
	}

	d.store.SetBuffer(gpu.LabelAdjacency, d.buffers.Adjacency())
	d.store.SetBuffer(gpu.LabelRestDeltas, d.buffers.RestDeltas())
	d.store.SetInt(PropVertexCount, int32(d.baked.Adjacency.VertexCount()))
	d.bindLive()
	d.store.SetVector(PropTransformScale, d.transformScale())

	d.stretch.attach(d.store)
	d.squash.attach(d.store)
	d.stretch.flush()
	d.squash.flush()
	return nil
}

// release frees all buffers and drops every reference the store holds.
func (d *Deformer) release() {
	d.buffers.ReleaseAll()
	if d.store != nil {
		d.store.SetBuffer(gpu.LabelAdjacency, nil)
		d.store.SetBuffer(gpu.LabelRestDeltas, nil)
		d.store.SetBuffer(gpu.LabelVertices, nil)
	}
	d.stretch.detach()
	d.squash.detach()
}

func (d *Deformer) refreshLive() error {
	if err := d.buffers.RefreshLiveVertexBuffer(d.vertices); err != nil {
		d.store.SetBuffer(gpu.LabelVertices, nil)
		return err
	}
	d.bindLive()
	return nil
}

func (d *Deformer) bindLive() {
	live := d.buffers.Live()
	d.store.SetBuffer(gpu.LabelVertices, live)
	d.store.SetInt(PropVertexStride, int32(live.Stride()/4))
}

func (d *Deformer) transformScale() [4]float32 {
	s := [3]float32{1, 1, 1}
	if d.scale != nil {
		s = d.scale()
	}
	return [4]float32{s[0], s[1], s[2], 0}
}
