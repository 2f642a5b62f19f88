package tension

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-tension/internal/gpu"
)

// MinPower is the lower bound for Parameters.Power.
const MinPower float32 = 0.01

// Direction selects which deformation a parameter set drives.
type Direction int

const (
	Stretch Direction = iota
	Squash
)

func (d Direction) String() string {
	switch d {
	case Stretch:
		return "stretch"
	case Squash:
		return "squash"
	default:
		return "unknown"
	}
}

func (d Direction) prefix() string {
	if d == Squash {
		return "_Squash"
	}
	return "_Stretch"
}

// IntensityProperty returns the shader property name for the intensity.
func (d Direction) IntensityProperty() string { return d.prefix() + "Intensity" }

// LimitProperty returns the shader property name for the limit.
func (d Direction) LimitProperty() string { return d.prefix() + "Limit" }

// PowerProperty returns the shader property name for the power.
func (d Direction) PowerProperty() string { return d.prefix() + "Power" }

// Parameters is a plain value copy of one direction's settings.
type Parameters struct {
	Intensity float32
	Limit     float32
	Power     float32
}

// DefaultParameters returns neutral settings.
func DefaultParameters() Parameters {
	return Parameters{Intensity: 1, Limit: 1, Power: 1}
}

type dirtyMask uint8

const (
	dirtyIntensity dirtyMask = 1 << iota
	dirtyLimit
	dirtyPower

	dirtyAll = dirtyIntensity | dirtyLimit | dirtyPower
)

// ParameterSet holds the validated settings for one direction and pushes
// changed values to the property store it is attached to.
type ParameterSet struct {
	dir     Direction
	values  Parameters
	pending dirtyMask

	// store is borrowed from the owning Deformer while it is active.
	store gpu.PropertyStore
}

// NewParameterSet creates a set with p, clamped into range.
func NewParameterSet(dir Direction, p Parameters) *ParameterSet {
	s := &ParameterSet{dir: dir, values: Parameters{Limit: 1, Power: 1}}
	s.Set(p)
	return s
}

// Direction returns the deformation direction of the set.
func (s *ParameterSet) Direction() Direction { return s.dir }

// Values returns a copy of the current settings.
func (s *ParameterSet) Values() Parameters { return s.values }

func (s *ParameterSet) Intensity() float32 { return s.values.Intensity }
func (s *ParameterSet) Limit() float32     { return s.values.Limit }
func (s *ParameterSet) Power() float32     { return s.values.Power }

// SetIntensity sets the intensity, floored at 0.
func (s *ParameterSet) SetIntensity(v float32) {
	s.update(&s.values.Intensity, v, 0, math32.Inf(1), dirtyIntensity)
}

// SetLimit sets the limit, clamped to [0, 1].
func (s *ParameterSet) SetLimit(v float32) {
	s.update(&s.values.Limit, v, 0, 1, dirtyLimit)
}

// SetPower sets the power, floored at MinPower.
func (s *ParameterSet) SetPower(v float32) {
	s.update(&s.values.Power, v, MinPower, math32.Inf(1), dirtyPower)
}

// Set applies all three values through their setters.
func (s *ParameterSet) Set(p Parameters) {
	s.SetIntensity(p.Intensity)
	s.SetLimit(p.Limit)
	s.SetPower(p.Power)
}

// Pending reports whether changed values await a push.
func (s *ParameterSet) Pending() bool { return s.pending != 0 }

// Attached reports whether the set currently has a property store.
func (s *ParameterSet) Attached() bool { return s.store != nil }

// ForcePush writes all three values and asks the store to bind immediately.
func (s *ParameterSet) ForcePush() error {
	if s.store == nil {
		return ErrDetached
	}
	s.pending = dirtyAll
	s.flush()
	s.store.BindNow()
	return nil
}

func (s *ParameterSet) update(field *float32, v, lo, hi float32, bit dirtyMask) {
	if math32.IsNaN(v) {
		return
	}
	v = math32.Min(math32.Max(v, lo), hi)
	if v == *field {
		return
	}
	*field = v
	s.pending |= bit
}

func (s *ParameterSet) attach(store gpu.PropertyStore) {
	s.store = store
	s.pending = dirtyAll
}

func (s *ParameterSet) detach() {
	s.store = nil
}

// flush pushes pending values. Values stay pending while detached.
func (s *ParameterSet) flush() {
	if s.store == nil || s.pending == 0 {
		return
	}
	if s.pending&dirtyIntensity != 0 {
		s.store.SetFloat(s.dir.IntensityProperty(), s.values.Intensity)
	}
	if s.pending&dirtyLimit != 0 {
		s.store.SetFloat(s.dir.LimitProperty(), s.values.Limit)
	}
	if s.pending&dirtyPower != 0 {
		s.store.SetFloat(s.dir.PowerProperty(), s.values.Power)
	}
	s.pending = 0
}
