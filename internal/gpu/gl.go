package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// GLDevice allocates OpenGL shader storage buffers. All calls must happen on
// the thread that owns the GL context.
type GLDevice struct {
	usage uint32
}

// NewGLDevice creates a device using DYNAMIC_DRAW storage.
func NewGLDevice() *GLDevice {
	return &GLDevice{usage: gl.DYNAMIC_DRAW}
}

// CreateBuffer creates an SSBO and uploads data.
func (d *GLDevice) CreateBuffer(label string, count, stride int, data []byte) (Buffer, error) {
	size := count * stride
	if data != nil && len(data) != size {
		return nil, fmt.Errorf("gpu: %s: %d bytes for %d elements of %d bytes", label, len(data), count, stride)
	}
	// Zero-sized storage cannot be bound; keep one word around.
	alloc := size
	if alloc == 0 {
		alloc = 4
	}

	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}

	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, alloc, ptr, d.usage)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &id)
		return nil, fmt.Errorf("gpu: %s: glBufferData failed (0x%x)", label, code)
	}

	return &GLBuffer{id: id, label: label, count: count, stride: stride}, nil
}

// GLBuffer is a Buffer backed by an OpenGL buffer object.
type GLBuffer struct {
	id     uint32
	label  string
	count  int
	stride int
}

// ID returns the GL buffer name, 0 once released.
func (b *GLBuffer) ID() uint32 { return b.id }

func (b *GLBuffer) Label() string { return b.label }
func (b *GLBuffer) Count() int    { return b.count }
func (b *GLBuffer) Stride() int   { return b.stride }

// Release deletes the GL buffer.
func (b *GLBuffer) Release() {
	if b.id == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
}
