// Package config handles tension tool configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Tension TensionConfig `yaml:"tension"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// TensionConfig holds bake and shader parameter settings.
type TensionConfig struct {
	PersistBake bool            `yaml:"persist_bake"` // Reuse the bake across activations
	Stretch     ParameterConfig `yaml:"stretch"`
	Squash      ParameterConfig `yaml:"squash"`
}

// ParameterConfig holds one direction's shader parameters.
type ParameterConfig struct {
	Intensity float32 `yaml:"intensity"`
	Limit     float32 `yaml:"limit"`
	Power     float32 `yaml:"power"`
}

// ViewerConfig holds display and animation settings for the viewer.
type ViewerConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Fullscreen      bool    `yaml:"fullscreen"`
	VSync           bool    `yaml:"vsync"`
	WobbleAmplitude float32 `yaml:"wobble_amplitude"`
	WobbleFrequency float32 `yaml:"wobble_frequency"`
	WatchMesh       bool    `yaml:"watch_mesh"` // Reload the mesh file when it changes
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Tension: TensionConfig{
			PersistBake: true,
			Stretch:     ParameterConfig{Intensity: 1, Limit: 1, Power: 1},
			Squash:      ParameterConfig{Intensity: 1, Limit: 1, Power: 1},
		},
		Viewer: ViewerConfig{
			Width:           1280,
			Height:          720,
			Fullscreen:      false,
			VSync:           true,
			WobbleAmplitude: 0.3,
			WobbleFrequency: 0.5,
			WatchMesh:       true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
