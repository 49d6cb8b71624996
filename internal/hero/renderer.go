// Package hero implements the animated line-field renderer: a device-scaled
// surface repainted every display refresh with a fading grid and three
// streaks sweeping top to bottom.
package hero

import (
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/san-kum/gridhero/internal/config"
	"github.com/san-kum/gridhero/internal/frame"
	"github.com/san-kum/gridhero/internal/linefield"
	"github.com/san-kum/gridhero/internal/render"
	"go.uber.org/zap"
)

// Frame describes one completed refresh.
type Frame struct {
	Index    int
	TS       time.Duration
	DtMs     float64
	Drawn    []int
	Snapshot linefield.Snapshot
}

// Observer is notified after every frame on the goroutine running the frame
// callback. img is the live backing store and is only valid during the call.
type Observer interface {
	OnFrame(f Frame, img image.Image)
}

type ObserverFunc func(f Frame, img image.Image)

func (fn ObserverFunc) OnFrame(f Frame, img image.Image) { fn(f, img) }

type Option func(*Renderer)

func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) { r.rng = rng }
}

func WithContextFunc(fn render.ContextFunc) Option {
	return func(r *Renderer) { r.surface = render.NewSurface(fn) }
}

// WithPalette replaces the palette resolved from the config.
func WithPalette(p render.Palette) Option {
	return func(r *Renderer) { r.painter.Palette = p }
}

func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observers = append(r.observers, o) }
}

// Renderer owns a surface, its working set of streaks and the pending frame
// request. Each instance is independent.
type Renderer struct {
	mu sync.Mutex

	id           xid.ID
	log          *zap.Logger
	sched        frame.Scheduler
	rng          *rand.Rand
	fieldOpts    linefield.Options
	streakLength float64
	painter      *render.Painter
	surface      *render.Surface
	field        *linefield.Field
	observers    []Observer

	host         Host
	removeResize func()
	pending      frame.Handle
	mounted      bool
	generation   int
	lastTS       time.Duration
	hasLast      bool
	frames       int
}

func New(cfg *config.Config, sched frame.Scheduler, opts ...Option) (*Renderer, error) {
	if sched == nil {
		return nil, fmt.Errorf("hero: nil scheduler")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	palette, err := cfg.ResolvePalette()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		id:           xid.New(),
		log:          zap.NewNop(),
		sched:        sched,
		fieldOpts:    cfg.FieldOptions(),
		streakLength: cfg.StreakLength,
		painter:      render.NewPainter(palette, cfg.CellSize),
		surface:      render.NewSurface(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		r.rng = rand.New(rand.NewSource(seed))
	}
	r.log = r.log.With(zap.String("renderer", r.id.String()))
	return r, nil
}

func (r *Renderer) ID() xid.ID { return r.id }

// Mount attaches the renderer to host and starts the frame loop. When no
// drawing context is available the renderer stays inert.
func (r *Renderer) Mount(host Host) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mounted {
		return
	}

	w, h := host.Bounds()
	if !r.surface.Acquire(w, h, host.DevicePixelRatio()) {
		r.log.Debug("no 2d context, renderer disabled")
		return
	}

	r.host = host
	r.mounted = true
	r.generation++
	r.hasLast = false
	r.removeResize = host.AddResizeListener(r.Resize)
	r.field = linefield.NewField(r.fieldOpts, r.rng, r.surface.Width())
	r.pending = r.sched.Request(r.tick)

	pw, ph := r.surface.PixelSize()
	r.log.Info("mounted",
		zap.Float64("width", r.surface.Width()),
		zap.Float64("height", r.surface.Height()),
		zap.Int("pixel_width", pw),
		zap.Int("pixel_height", ph),
		zap.Int("columns", r.field.Columns(r.surface.Width())))
}

// Resize re-derives the surface scale from the host geometry. It may be
// called from any goroutine, any number of times.
func (r *Renderer) Resize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted {
		return
	}
	w, h := r.host.Bounds()
	r.surface.Resize(w, h, r.host.DevicePixelRatio())
	r.log.Debug("resized",
		zap.Float64("width", r.surface.Width()),
		zap.Float64("height", r.surface.Height()),
		zap.Float64("dpr", r.surface.DevicePixelRatio()),
		zap.Int("columns", r.field.Columns(r.surface.Width())))
}

// Unmount removes the resize listener and cancels the pending frame. No frame
// callback runs after Unmount returns.
func (r *Renderer) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted {
		return
	}
	r.mounted = false
	if r.removeResize != nil {
		r.removeResize()
		r.removeResize = nil
	}
	r.sched.Cancel(r.pending)
	r.pending = 0
	r.log.Info("unmounted", zap.Int("frames", r.frames))
}

func (r *Renderer) tick(ts time.Duration) {
	r.mu.Lock()
	if !r.mounted {
		r.mu.Unlock()
		return
	}
	f := r.paint(ts)
	img := r.surface.Image()
	observers := r.observers
	gen := r.generation
	r.mu.Unlock()

	for _, o := range observers {
		o.OnFrame(f, img)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mounted && r.generation == gen {
		r.pending = r.sched.Request(r.tick)
	}
}

func (r *Renderer) paint(ts time.Duration) Frame {
	dt := linefield.FallbackFrameMs
	if r.hasLast {
		dt = max(0, float64(ts-r.lastTS)/float64(time.Millisecond))
	}
	r.lastTS, r.hasLast = ts, true

	w, h := r.surface.Width(), r.surface.Height()
	r.painter.Background(r.surface)
	r.painter.Grid(r.surface)

	var drawn []int
	r.field.Step(dt, w, h, r.streakLength, func(i int, line linefield.Line, span linefield.Span) {
		r.painter.Streak(r.surface, float64(line.Column)*r.painter.CellSize, span)
		drawn = append(drawn, i)
	})

	f := Frame{
		Index:    r.frames,
		TS:       ts,
		DtMs:     dt,
		Drawn:    drawn,
		Snapshot: r.field.Snapshot(w, h),
	}
	r.frames++
	return f
}

func (r *Renderer) SetPalette(p render.Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.painter.Palette = p
}

func (r *Renderer) Palette() render.Palette {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.painter.Palette
}

func (r *Renderer) Mounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounted
}

func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Snapshot returns the working set, or an empty snapshot before mount.
func (r *Renderer) Snapshot() linefield.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.field == nil {
		return linefield.Snapshot{}
	}
	return r.field.Snapshot(r.surface.Width(), r.surface.Height())
}

// SurfaceInfo reports the logical size and scaling transform.
func (r *Renderer) SurfaceInfo() (width, height float64, transform render.Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface.Width(), r.surface.Height(), r.surface.Transform()
}

// Image returns the backing store. It is mutated by subsequent frames.
func (r *Renderer) Image() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface.Image()
}

// SetLine overwrites a working-set slot. It exists for hosts that replay
// recorded state and for tests.
func (r *Renderer) SetLine(i int, l linefield.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.field != nil {
		r.field.SetLine(i, l)
	}
}
