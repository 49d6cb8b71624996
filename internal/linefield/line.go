package linefield

import "math"

const (
	DefaultCellSize     = 60.0
	DefaultStreakLength = 150.0
	DefaultSpeed        = 0.3
	DefaultMaxDelay     = 2000.0 // ms

	// WorkingSetSize is the number of streaks tracked for the lifetime of a field.
	WorkingSetSize = 3

	// ResetProgress is the progress past which a streak is replaced.
	ResetProgress = 1.2

	// FallbackFrameMs is the elapsed time assumed for the first frame (~60Hz).
	FallbackFrameMs = 16.7

	fadeStart = 0.6
	fadeEnd   = 0.9
)

// Line is a single vertical streak pinned to a grid column.
type Line struct {
	Column   int     `json:"column"`
	Progress float64 `json:"progress"`
	Speed    float64 `json:"speed"`
	Delay    float64 `json:"delay"`
}

// Active reports whether the activation delay has elapsed.
func (l Line) Active() bool { return l.Delay <= 0 }

// Span is the vertical extent of a streak in logical pixels.
type Span struct {
	Start, End       float64 // unclipped leading and trailing edge
	ClipTop, ClipEnd float64 // clipped to [0, height]
}

// Visible reports whether any part of the span lies on the surface.
func (s Span) Visible() bool { return s.ClipEnd > s.ClipTop }

// Columns returns the number of grid columns covering width.
func Columns(width, cellSize float64) int {
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = DefaultCellSize
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return 1
	}
	return max(1, int(math.Ceil(width/cellSize)))
}

// HorizontalAlpha is the opacity of a horizontal grid line at y.
func HorizontalAlpha(y, height float64) float64 {
	if height <= 0 {
		return 1
	}
	start, end := height*fadeStart, height*fadeEnd
	if y <= start {
		return 1
	}
	return 1 - math.Min(1, (y-start)/(end-start))
}

// StreakSpan places a streak whose leading edge is progress*height.
func StreakSpan(progress, height, length float64) Span {
	start := progress * height
	end := start + length
	return Span{
		Start:   start,
		End:     end,
		ClipTop: math.Max(0, start),
		ClipEnd: math.Min(height, end),
	}
}

// GridLines returns the offsets of grid lines from 0 to extent inclusive.
func GridLines(extent, cellSize float64) []float64 {
	if cellSize <= 0 || !(extent >= 0) {
		return nil
	}
	lines := make([]float64, 0, int(extent/cellSize)+1)
	for v := 0.0; v <= extent; v += cellSize {
		lines = append(lines, v)
	}
	return lines
}
