package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const envPrefix = "GRIDHERO_"

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from GRIDHERO_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(envPrefix + "THEME"); ok && v != "" {
		c.Theme = v
	}
	if v, ok := lookup(envPrefix + "TITLE"); ok {
		c.Overlay.Title = v
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{"CELL_SIZE", &c.CellSize},
		{"SPEED", &c.Speed},
		{"DPR", &c.DevicePixelRatio},
		{"WIDTH", &c.Width},
		{"HEIGHT", &c.Height},
	}
	for _, f := range floats {
		v, ok := lookup(envPrefix + f.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, f.key, err)
		}
		*f.dst = parsed
	}
	if v, ok := lookup(envPrefix + "FPS"); ok && v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sFPS: %w", envPrefix, err)
		}
		c.FPS = fps
	}
	if v, ok := lookup(envPrefix + "SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sSEED: %w", envPrefix, err)
		}
		c.Seed = seed
	}
	return nil
}
