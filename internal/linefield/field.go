package linefield

import (
	"math/rand"
)

// maxSpawnAttempts bounds column rejection sampling before falling back to
// the first free column.
const maxSpawnAttempts = 64

type Options struct {
	CellSize float64
	Speed    float64
	MaxDelay float64
}

func DefaultOptions() Options {
	return Options{
		CellSize: DefaultCellSize,
		Speed:    DefaultSpeed,
		MaxDelay: DefaultMaxDelay,
	}
}

func (o Options) withDefaults() Options {
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Speed <= 0 {
		o.Speed = DefaultSpeed
	}
	if o.MaxDelay < 0 {
		o.MaxDelay = 0
	}
	return o
}

// Field owns the working set of streaks. It is not safe for concurrent use.
type Field struct {
	opts  Options
	rng   *rand.Rand
	lines []Line
}

// Snapshot is a copy of the working set at a point in time.
type Snapshot struct {
	Lines  []Line  `json:"lines"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewField seeds WorkingSetSize lines against a surface of the given width.
func NewField(opts Options, rng *rand.Rand, width float64) *Field {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	f := &Field{
		opts:  opts.withDefaults(),
		rng:   rng,
		lines: make([]Line, 0, WorkingSetSize),
	}
	for i := 0; i < WorkingSetSize; i++ {
		f.lines = append(f.lines, f.Spawn(width))
	}
	return f
}

func (f *Field) Options() Options { return f.opts }

func (f *Field) Columns(width float64) int { return Columns(width, f.opts.CellSize) }

// Spawn creates a fresh line. The column avoids every column currently held
// by the working set, unless the set already has at least as many members as
// there are columns, in which case collisions are tolerated.
func (f *Field) Spawn(width float64) Line {
	cols := f.Columns(width)
	line := Line{Speed: f.opts.Speed, Delay: f.rng.Float64() * f.opts.MaxDelay}

	if len(f.lines) >= cols {
		line.Column = f.rng.Intn(cols)
		return line
	}

	taken := make(map[int]bool, len(f.lines))
	for _, l := range f.lines {
		taken[l.Column] = true
	}
	for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
		col := f.rng.Intn(cols)
		if !taken[col] {
			line.Column = col
			return line
		}
	}
	for col := 0; col < cols; col++ {
		if !taken[col] {
			line.Column = col
			break
		}
	}
	return line
}

// DrawFunc receives each streak that is visible this frame.
type DrawFunc func(index int, line Line, span Span)

// Step advances every line by dtMs. draw is called for active lines before
// their progress advances and may be nil.
func (f *Field) Step(dtMs, width, height, streakLength float64, draw DrawFunc) {
	cols := f.Columns(width)
	for i := range f.lines {
		line := &f.lines[i]
		if line.Delay > 0 {
			line.Delay -= dtMs
			continue
		}
		if line.Column >= cols {
			f.lines[i] = f.Spawn(width)
			continue
		}

		if draw != nil {
			draw(i, *line, StreakSpan(line.Progress, height, streakLength))
		}

		line.Progress += line.Speed * (dtMs / 1000)
		if line.Progress > ResetProgress {
			f.lines[i] = f.Spawn(width)
		}
	}
}

// Lines returns a copy of the working set.
func (f *Field) Lines() []Line {
	out := make([]Line, len(f.lines))
	copy(out, f.lines)
	return out
}

func (f *Field) Snapshot(width, height float64) Snapshot {
	return Snapshot{Lines: f.Lines(), Width: width, Height: height}
}

// SetLine overwrites a working-set slot. Out of range indexes are ignored.
func (f *Field) SetLine(i int, l Line) {
	if i < 0 || i >= len(f.lines) {
		return
	}
	f.lines[i] = l
}
