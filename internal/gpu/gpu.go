// Package gpu owns GPU-visible buffers and the shader-facing property store.
package gpu

import (
	"errors"
	"unsafe"
)

// ErrBuffersExist is returned by Buffers.CreateAll when buffers are still held.
var ErrBuffersExist = errors.New("gpu: buffers already allocated")

// Buffer is an opaque GPU resource handle.
type Buffer interface {
	// Label identifies the buffer in logs.
	Label() string
	// Count is the number of elements.
	Count() int
	// Stride is the element size in bytes.
	Stride() int
	// Release frees the underlying resource. Releasing twice is a no-op.
	Release()
}

// Device allocates buffers and uploads their initial contents.
type Device interface {
	CreateBuffer(label string, count, stride int, data []byte) (Buffer, error)
}

// VertexSource hands out the current deformed vertex buffer. Each call
// returns a freshly acquired handle that the caller must release.
type VertexSource interface {
	DeformedVertexBuffer() (Buffer, error)
}

// Upload creates a buffer holding the elements of data.
func Upload[T any](d Device, label string, data []T) (Buffer, error) {
	var zero T
	stride := int(unsafe.Sizeof(zero))
	return d.CreateBuffer(label, len(data), stride, sliceBytes(data))
}

// sliceBytes reinterprets a slice as raw bytes without copying.
func sliceBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), size)
}
