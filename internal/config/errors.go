package config

import "errors"

// Validation errors for hero configuration.
var (
	// ErrCellSize indicates a non-positive grid cell size.
	ErrCellSize = errors.New("config: cell_size must be positive")

	// ErrSpeed indicates a non-positive streak speed.
	ErrSpeed = errors.New("config: speed must be positive")

	ErrStreakLength = errors.New("config: streak_length must be positive")
	ErrMaxDelay     = errors.New("config: max_delay_ms must not be negative")
	ErrFPS          = errors.New("config: fps out of range 1-240")
	ErrPixelRatio   = errors.New("config: device_pixel_ratio must be positive")
	ErrSize         = errors.New("config: width and height must not be negative")

	// ErrUnknownTheme indicates a theme name with no palette.
	ErrUnknownTheme = errors.New("config: unknown theme")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("config: unknown preset")
)
