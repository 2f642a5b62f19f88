// Package deform provides a CPU stand-in for a skinning stage: it animates
// a rest mesh and hands out the deformed positions as GPU buffers.
package deform

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-tension/internal/gpu"
	"github.com/Faultbox/midgard-tension/pkg/math"
	"github.com/Faultbox/midgard-tension/pkg/meshdata"
)

// Wobble stretches and squashes a mesh along X with a travelling sine wave
// whose phase depends on Y, so neighboring rows deform in opposite ways.
type Wobble struct {
	Amplitude float32 // peak relative stretch, 0.25 means ±25%
	Frequency float32 // wave cycles per second
	Waves     float32 // wave cycles across the mesh height

	device gpu.Device
	mesh   *meshdata.Snapshot
	time   float32

	center    math.Vec3
	height    float32
	positions [][3]float32
}

// NewWobble creates a deformer for mesh that uploads through device.
func NewWobble(device gpu.Device, mesh *meshdata.Snapshot, amplitude, frequency float32) *Wobble {
	lo, hi := mesh.Bounds()
	height := hi[1] - lo[1]
	if height == 0 {
		height = 1
	}
	return &Wobble{
		Amplitude: amplitude,
		Frequency: frequency,
		Waves:     1,
		device:    device,
		mesh:      mesh,
		center:    math.Vec3(lo).Midpoint(hi),
		height:    height,
		positions: make([][3]float32, len(mesh.Positions)),
	}
}

// Mesh returns the rest mesh being deformed.
func (w *Wobble) Mesh() *meshdata.Snapshot { return w.mesh }

// Time returns the animation clock in seconds.
func (w *Wobble) Time() float32 { return w.time }

// Advance moves the animation clock forward by dt seconds.
func (w *Wobble) Advance(dt float32) {
	w.time += dt
}

// Deform computes the positions for the current time. The returned slice is
// reused by the next call.
func (w *Wobble) Deform() [][3]float32 {
	omega := 2 * math32.Pi * w.Frequency
	k := 2 * math32.Pi * w.Waves / w.height
	for i, p := range w.mesh.Positions {
		factor := 1 + w.Amplitude*math32.Sin(omega*w.time+(p[1]-w.center[1])*k)
		w.positions[i] = [3]float32{
			w.center[0] + (p[0]-w.center[0])*factor,
			p[1],
			p[2],
		}
	}
	return w.positions
}

// DeformedVertexBuffer uploads the current deformation into a new buffer.
// The caller owns the result.
func (w *Wobble) DeformedVertexBuffer() (gpu.Buffer, error) {
	return gpu.Upload(w.device, gpu.LabelVertices, w.Deform())
}
