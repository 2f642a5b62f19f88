package config

import "github.com/Faultbox/midgard-tension/internal/tension"

// Parameters converts the settings into deformer parameters.
func (p ParameterConfig) Parameters() tension.Parameters {
	return tension.Parameters{Intensity: p.Intensity, Limit: p.Limit, Power: p.Power}
}

// StoreParameters records the current stretch and squash settings so a
// following Save persists them.
func (c *Config) StoreParameters(stretch, squash tension.Parameters) {
	c.Tension.Stretch = ParameterConfig(stretch)
	c.Tension.Squash = ParameterConfig(squash)
}
