package config

import "fmt"

// Sources names every layer a configuration is built from. Resolve can be
// called repeatedly, so a reload sees the same preset, environment and
// overrides as startup.
type Sources struct {
	Preset string
	File   string
	// Lookup reads GRIDHERO_* variables; nil skips the environment.
	Lookup func(string) (string, bool)
	// Overrides runs last, typically applying explicitly set flags.
	Overrides func(*Config)
}

// Resolve layers preset < file < environment < overrides and validates the
// result.
func (s Sources) Resolve() (*Config, error) {
	cfg := DefaultConfig()
	if s.Preset != "" {
		p, err := GetPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if s.File != "" {
		loaded, err := LoadOnto(s.File, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if s.Lookup != nil {
		if err := cfg.ApplyEnv(s.Lookup); err != nil {
			return nil, err
		}
	}
	if s.Overrides != nil {
		s.Overrides(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
