package gpu

// PropertyStore is the binding table through which buffers and scalars reach
// the shader. Buffers are bound by reference; the store never releases them.
type PropertyStore interface {
	SetBuffer(name string, buf Buffer)
	SetFloat(name string, v float32)
	SetInt(name string, v int32)
	SetVector(name string, v [4]float32)
	// BindNow applies pending values immediately instead of at the next draw.
	BindNow()
}

// PropertyBlock records property values by name.
type PropertyBlock struct {
	Buffers map[string]Buffer
	Floats  map[string]float32
	Ints    map[string]int32
	Vectors map[string][4]float32

	// Writes counts Set* calls, Binds counts BindNow calls.
	Writes int
	Binds  int
}

// NewPropertyBlock creates an empty block.
func NewPropertyBlock() *PropertyBlock {
	return &PropertyBlock{
		Buffers: make(map[string]Buffer),
		Floats:  make(map[string]float32),
		Ints:    make(map[string]int32),
		Vectors: make(map[string][4]float32),
	}
}

// SetBuffer binds buf under name; a nil buf unbinds it.
func (p *PropertyBlock) SetBuffer(name string, buf Buffer) {
	p.Writes++
	if buf == nil {
		delete(p.Buffers, name)
		return
	}
	p.Buffers[name] = buf
}

func (p *PropertyBlock) SetFloat(name string, v float32) {
	p.Writes++
	p.Floats[name] = v
}

func (p *PropertyBlock) SetInt(name string, v int32) {
	p.Writes++
	p.Ints[name] = v
}

func (p *PropertyBlock) SetVector(name string, v [4]float32) {
	p.Writes++
	p.Vectors[name] = v
}

func (p *PropertyBlock) BindNow() {
	p.Binds++
}
