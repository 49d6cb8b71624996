package sim

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/san-kum/gridhero/internal/frame"
	"github.com/san-kum/gridhero/internal/hero"
	"go.uber.org/zap"
)

// RunRealtime drives the renderer from a wall-clock Ticker instead of a
// simulated clock, so frame timestamps carry real scheduling jitter. It
// returns after run.Frames frames or when ctx is done.
func (s *Simulator) RunRealtime(ctx context.Context, run Config) (*Result, error) {
	if err := validateConfig(run); err != nil {
		return nil, err
	}

	ticker := frame.NewTicker(run.Interval)
	host := hero.NewStaticHost(s.cfg.Width, s.cfg.Height, s.cfg.DevicePixelRatio)
	recycles := &recycleCounter{}
	stop := &frameLimit{frames: run.Frames, host: host, resizes: run.Resizes, done: make(chan struct{})}

	r, err := s.newRenderer(ticker, recycles, stop)
	if err != nil {
		return nil, err
	}
	stop.renderer = r

	if b, ok := run.Resizes[0]; ok {
		host.SetBounds(b.Width, b.Height)
	}
	r.Mount(host)
	if !r.Mounted() {
		return nil, ErrNoContext
	}

	start := time.Now()
	ticker.Start()
	defer ticker.Stop()

	result := &Result{}
	select {
	case <-stop.done:
	case <-ctx.Done():
		r.Unmount()
		result.Frames = r.Frames()
		return result, ctx.Err()
	}

	result.Frames = r.Frames()
	result.Elapsed = time.Since(start)
	result.Recycled = recycles.count
	result.Final = r.Snapshot()
	s.log.Debug("realtime run complete",
		zap.Int("frames", result.Frames),
		zap.Duration("elapsed", result.Elapsed),
		zap.Int("ticker_frames", ticker.Frames()))
	return result, nil
}

// frameLimit unmounts the renderer from inside the last wanted frame, so
// no further frame is painted, and applies scheduled resizes between frames.
type frameLimit struct {
	frames   int
	host     *hero.StaticHost
	resizes  map[int]Bounds
	renderer *hero.Renderer
	once     sync.Once
	done     chan struct{}
}

func (l *frameLimit) OnFrame(f hero.Frame, _ image.Image) {
	if f.Index+1 >= l.frames {
		l.once.Do(func() {
			l.renderer.Unmount()
			close(l.done)
		})
		return
	}
	if b, ok := l.resizes[f.Index+1]; ok {
		l.host.SetBounds(b.Width, b.Height)
	}
}
