package config

import (
	"fmt"
	"sort"
)

var Presets = map[string]func(*Config){
	"hero": func(c *Config) {},
	"dense": func(c *Config) {
		c.CellSize = 30
		c.Speed = 0.45
		c.StreakLength = 90
	},
	"calm": func(c *Config) {
		c.Theme = "ocean"
		c.Speed = 0.15
		c.MaxDelay = 4000
	},
	"narrow": func(c *Config) {
		c.Width = 120
		c.Height = 400
	},
	"retina": func(c *Config) {
		c.DevicePixelRatio = 2
	},
}

// GetPreset returns the default configuration with the named preset applied.
func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
