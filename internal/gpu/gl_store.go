package gpu

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Faultbox/midgard-tension/internal/shader"
)

// GLProgramStore records properties and applies them to a GL program on
// BindNow. Buffer names map to SSBO binding points; scalars and vectors go to
// uniforms of the same name.
type GLProgramStore struct {
	*PropertyBlock

	program  *shader.Program
	bindings map[string]uint32
}

// NewGLProgramStore creates a store for program with the given SSBO binding
// points.
func NewGLProgramStore(program *shader.Program, bindings map[string]uint32) *GLProgramStore {
	return &GLProgramStore{
		PropertyBlock: NewPropertyBlock(),
		program:       program,
		bindings:      bindings,
	}
}

// BindNow uploads every recorded value.
func (s *GLProgramStore) BindNow() {
	s.PropertyBlock.BindNow()

	for name, v := range s.Floats {
		if loc := s.program.Uniform(name); loc >= 0 {
			gl.ProgramUniform1f(s.program.ID, loc, v)
		}
	}
	for name, v := range s.Ints {
		if loc := s.program.Uniform(name); loc >= 0 {
			gl.ProgramUniform1i(s.program.ID, loc, v)
		}
	}
	for name, v := range s.Vectors {
		if loc := s.program.Uniform(name); loc >= 0 {
			gl.ProgramUniform4f(s.program.ID, loc, v[0], v[1], v[2], v[3])
		}
	}
	for name, binding := range s.bindings {
		var id uint32
		if buf, ok := s.Buffers[name].(*GLBuffer); ok {
			id = buf.ID()
		}
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, id)
	}
}
