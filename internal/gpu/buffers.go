package gpu

import (
	"fmt"

	"go.uber.org/zap"
)

// Buffer labels, also used as property names when bound.
const (
	LabelAdjacency  = "_Adjacency"
	LabelRestDeltas = "_RestDeltas"
	LabelVertices   = "_Vertices"
)

// Buffers owns the adjacency, rest-delta and live vertex buffers. At most one
// buffer of each kind is retained at any time.
type Buffers struct {
	device Device
	log    *zap.Logger

	adjacency  Buffer
	restDeltas Buffer
	live       Buffer
}

// NewBuffers creates an empty buffer set backed by device.
func NewBuffers(device Device, log *zap.Logger) *Buffers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Buffers{device: device, log: log}
}

// CreateAll uploads the adjacency encoding and rest deltas. It fails if
// buffers are still allocated; call ReleaseAll first. On failure nothing
// stays allocated.
func (b *Buffers) CreateAll(adjacency []uint32, restDeltas [][3]float32) error {
	if b.adjacency != nil || b.restDeltas != nil {
		return ErrBuffersExist
	}

	adj, err := Upload(b.device, LabelAdjacency, adjacency)
	if err != nil {
		return fmt.Errorf("adjacency buffer: %w", err)
	}
	deltas, err := Upload(b.device, LabelRestDeltas, restDeltas)
	if err != nil {
		adj.Release()
		return fmt.Errorf("rest delta buffer: %w", err)
	}

	b.adjacency = adj
	b.restDeltas = deltas
	b.log.Debug("buffers created",
		zap.Int("adjacency", adj.Count()),
		zap.Int("restDeltas", deltas.Count()))
	return nil
}

// ReleaseAll disposes every owned buffer. Safe to call when nothing is held.
func (b *Buffers) ReleaseAll() {
	released := 0
	for _, buf := range []*Buffer{&b.adjacency, &b.restDeltas, &b.live} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
			released++
		}
	}
	if released > 0 {
		b.log.Debug("buffers released", zap.Int("count", released))
	}
}

// RefreshLiveVertexBuffer swaps the live vertex buffer for a fresh handle from
// src. The previous handle is released first; if acquisition fails the live
// buffer stays unset.
func (b *Buffers) RefreshLiveVertexBuffer(src VertexSource) error {
	if b.live != nil {
		b.live.Release()
		b.live = nil
	}
	buf, err := src.DeformedVertexBuffer()
	if err != nil {
		return fmt.Errorf("live vertex buffer: %w", err)
	}
	if buf == nil {
		return fmt.Errorf("live vertex buffer: source returned no buffer")
	}
	b.live = buf
	return nil
}

// Allocated reports whether the baked-data buffers exist.
func (b *Buffers) Allocated() bool {
	return b.adjacency != nil && b.restDeltas != nil
}

// Adjacency returns the adjacency buffer, or nil.
func (b *Buffers) Adjacency() Buffer { return b.adjacency }

// RestDeltas returns the rest-delta buffer, or nil.
func (b *Buffers) RestDeltas() Buffer { return b.restDeltas }

// Live returns the live vertex buffer, or nil.
func (b *Buffers) Live() Buffer { return b.live }
