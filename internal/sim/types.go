package sim

import (
	"time"

	"github.com/san-kum/gridhero/internal/linefield"
)

// Bounds is a container size in logical pixels.
type Bounds struct {
	Width, Height float64
}

type Config struct {
	Frames   int
	Interval time.Duration
	// Resizes are applied right before the frame with the given index.
	Resizes map[int]Bounds
}

type Result struct {
	Frames   int
	Elapsed  time.Duration
	Recycled int
	Final    linefield.Snapshot
}
