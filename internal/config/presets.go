package config

import "sort"

// Presets build a fresh scenario each call so callers may edit the result.
var Presets = map[string]func() *Config{
	"drift": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "drift"
		cfg.Vehicle.Position = Vec3{0, 0.3, 0}
		return cfg
	},
	"surge": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "surge"
		cfg.Schedule = []CommandStep{
			{At: 1, Target: "motion.forward", Value: 0.8},
			{At: 12, Target: "motion.forward", Value: 0},
		}
		return cfg
	},
	"strafe": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "strafe"
		cfg.Schedule = []CommandStep{{At: 1, Target: "motion.strafe", Value: 0.6}}
		return cfg
	},
	"spin": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "spin"
		cfg.Schedule = []CommandStep{{At: 1, Target: "motion.yaw", Value: 0.5}}
		return cfg
	},
	"waves": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "waves"
		cfg.Duration = 30
		cfg.Water.Waves = []WaveConfig{
			{Amplitude: 0.15, Length: 8, Direction: 0},
			{Amplitude: 0.05, Length: 3, Direction: 40, Phase: 1},
		}
		return cfg
	},
	"current": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "current"
		cfg.Water.Current = Vec3{0.4, 0, 0}
		cfg.Schedule = []CommandStep{{At: 2, Target: "motion.strafe", Value: -0.5}}
		return cfg
	},
	"sink": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "sink"
		cfg.Duration = 10
		cfg.Vehicle.Buoyancy = false
		return cfg
	},
	"pan": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "pan"
		cfg.Duration = 10
		cfg.Schedule = []CommandStep{
			{At: 0.5, Target: "camera", Value: 0.8},
			{At: 5, Target: "camera", Value: -0.5},
		}
		return cfg
	},
}

// GetPreset returns nil for an unknown name.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
