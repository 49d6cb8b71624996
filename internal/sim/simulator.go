package sim

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/san-kum/gridhero/internal/config"
	"github.com/san-kum/gridhero/internal/frame"
	"github.com/san-kum/gridhero/internal/hero"
	"github.com/san-kum/gridhero/internal/linefield"
	"go.uber.org/zap"
)

// ErrNoContext indicates the renderer could not obtain a drawing context.
var ErrNoContext = errors.New("sim: renderer has no drawing context")

// Simulator drives a renderer headless on a simulated clock.
type Simulator struct {
	cfg       *config.Config
	log       *zap.Logger
	observers []hero.Observer
	options   []hero.Option
}

func New(cfg *config.Config, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{cfg: cfg, log: log}
}

func (s *Simulator) AddObserver(o hero.Observer) { s.observers = append(s.observers, o) }

// AddOption passes extra options to the renderer created by Run.
func (s *Simulator) AddOption(opt hero.Option) { s.options = append(s.options, opt) }

func (s *Simulator) Run(ctx context.Context, run Config) (*Result, error) {
	if err := validateConfig(run); err != nil {
		return nil, err
	}

	sched := frame.NewManual()
	host := hero.NewStaticHost(s.cfg.Width, s.cfg.Height, s.cfg.DevicePixelRatio)

	result := &Result{}
	recycles := &recycleCounter{}

	r, err := s.newRenderer(sched, recycles)
	if err != nil {
		return nil, err
	}
	r.Mount(host)
	if !r.Mounted() {
		return nil, ErrNoContext
	}
	defer r.Unmount()

	for i := 0; i < run.Frames; i++ {
		select {
		case <-ctx.Done():
			result.Frames = r.Frames()
			return result, ctx.Err()
		default:
		}
		if b, ok := run.Resizes[i]; ok {
			host.SetBounds(b.Width, b.Height)
		}
		sched.Advance(run.Interval)
	}

	result.Frames = r.Frames()
	result.Elapsed = sched.Now()
	result.Recycled = recycles.count
	result.Final = r.Snapshot()
	s.log.Debug("headless run complete",
		zap.Int("frames", result.Frames),
		zap.Duration("elapsed", result.Elapsed),
		zap.Int("recycled", result.Recycled))
	return result, nil
}

// newRenderer attaches the recycle counter, the simulator's observers and
// then extra, in that order.
func (s *Simulator) newRenderer(sched frame.Scheduler, recycles *recycleCounter, extra ...hero.Observer) (*hero.Renderer, error) {
	opts := []hero.Option{hero.WithLogger(s.log), hero.WithObserver(recycles)}
	for _, o := range s.observers {
		opts = append(opts, hero.WithObserver(o))
	}
	for _, o := range extra {
		opts = append(opts, hero.WithObserver(o))
	}
	opts = append(opts, s.options...)
	return hero.New(s.cfg, sched, opts...)
}

func validateConfig(run Config) error {
	if run.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", run.Frames)
	}
	if run.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", run.Interval)
	}
	return nil
}

// recycleCounter counts lines replaced between consecutive frames.
type recycleCounter struct {
	prev  []linefield.Line
	count int
}

func (c *recycleCounter) OnFrame(f hero.Frame, _ image.Image) {
	cur := f.Snapshot.Lines
	if c.prev != nil {
		for i := range cur {
			if i < len(c.prev) && recycled(c.prev[i], cur[i]) {
				c.count++
			}
		}
	}
	c.prev = append(c.prev[:0], cur...)
}

func recycled(before, after linefield.Line) bool {
	return after.Progress < before.Progress || after.Delay > before.Delay || after.Column != before.Column
}
