package gpu

import "fmt"

// MemoryDevice keeps buffers in host memory. It counts live allocations so
// callers can detect leaks, and can be told to fail specific allocations.
type MemoryDevice struct {
	// FailOn, when set, is consulted before every allocation; a non-nil
	// result is returned as the allocation error.
	FailOn func(label string) error

	live    map[*MemoryBuffer]struct{}
	created int
}

// NewMemoryDevice creates an empty host-memory device.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{live: make(map[*MemoryBuffer]struct{})}
}

// CreateBuffer allocates a buffer and copies data into it. A nil data slice
// yields a zeroed buffer.
func (d *MemoryDevice) CreateBuffer(label string, count, stride int, data []byte) (Buffer, error) {
	if d.FailOn != nil {
		if err := d.FailOn(label); err != nil {
			return nil, err
		}
	}
	if count < 0 || stride <= 0 {
		return nil, fmt.Errorf("gpu: %s: invalid layout count=%d stride=%d", label, count, stride)
	}
	size := count * stride
	if data != nil && len(data) != size {
		return nil, fmt.Errorf("gpu: %s: %d bytes for %d elements of %d bytes", label, len(data), count, stride)
	}

	buf := &MemoryBuffer{
		device: d,
		label:  label,
		count:  count,
		stride: stride,
		data:   make([]byte, size),
	}
	copy(buf.data, data)
	d.live[buf] = struct{}{}
	d.created++
	return buf, nil
}

// Live returns the number of buffers allocated and not yet released.
func (d *MemoryDevice) Live() int {
	return len(d.live)
}

// Created returns the total number of successful allocations.
func (d *MemoryDevice) Created() int {
	return d.created
}

// MemoryBuffer is a Buffer allocated by a MemoryDevice.
type MemoryBuffer struct {
	device   *MemoryDevice
	label    string
	count    int
	stride   int
	data     []byte
	released bool
}

func (b *MemoryBuffer) Label() string { return b.label }
func (b *MemoryBuffer) Count() int    { return b.count }
func (b *MemoryBuffer) Stride() int   { return b.stride }

// Released reports whether Release has been called.
func (b *MemoryBuffer) Released() bool { return b.released }

// Bytes returns the buffer contents.
func (b *MemoryBuffer) Bytes() []byte { return b.data }

// Release returns the buffer to the device.
func (b *MemoryBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.data = nil
	delete(b.device.live, b)
}
