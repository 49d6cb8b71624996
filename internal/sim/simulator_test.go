package sim

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/fogleman/gg"
	"github.com/san-kum/gridhero/internal/config"
	"github.com/san-kum/gridhero/internal/hero"
	"github.com/san-kum/gridhero/internal/linefield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height = 600, 300
	cfg.Seed = 11
	return cfg
}

func TestSimulatorRun(t *testing.T) {
	s := New(testConfig(), nil)
	var frames []hero.Frame
	s.AddObserver(hero.ObserverFunc(func(f hero.Frame, img image.Image) {
		require.NotNil(t, img)
		frames = append(frames, f)
	}))

	result, err := s.Run(context.Background(), Config{Frames: 600, Interval: 50 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 600, result.Frames)
	assert.Equal(t, 30*time.Second, result.Elapsed)
	assert.Len(t, frames, 600)
	assert.Len(t, result.Final.Lines, linefield.WorkingSetSize)
	// 30s of simulated time at speed 0.3 recycles every line several times
	assert.GreaterOrEqual(t, result.Recycled, linefield.WorkingSetSize)

	for i, f := range frames {
		assert.Equal(t, i, f.Index)
	}
}

func TestSimulatorAppliesResizes(t *testing.T) {
	s := New(testConfig(), nil)
	var narrow [][]int
	s.AddObserver(hero.ObserverFunc(func(f hero.Frame, _ image.Image) {
		if f.Index < 5 {
			return
		}
		cols := make([]int, 0, len(f.Drawn))
		for _, i := range f.Drawn {
			cols = append(cols, f.Snapshot.Lines[i].Column)
		}
		narrow = append(narrow, cols)
	}))

	result, err := s.Run(context.Background(), Config{
		Frames:   200,
		Interval: 16 * time.Millisecond,
		Resizes:  map[int]Bounds{5: {Width: 120, Height: 300}},
	})
	require.NoError(t, err)

	assert.Equal(t, 120.0, result.Final.Width)
	require.Len(t, narrow, 195)
	for _, cols := range narrow {
		for _, c := range cols {
			assert.Less(t, c, 2)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(testConfig(), nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero frames", Config{Frames: 0, Interval: time.Millisecond}},
		{"negative frames", Config{Frames: -3, Interval: time.Millisecond}},
		{"zero interval", Config{Frames: 10, Interval: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestSimulatorCancellation(t *testing.T) {
	s := New(testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	s.AddObserver(hero.ObserverFunc(func(f hero.Frame, _ image.Image) {
		if f.Index == 4 {
			cancel()
		}
	}))

	result, err := s.Run(ctx, Config{Frames: 100, Interval: time.Millisecond})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 5, result.Frames)
}

func TestSimulatorNoContext(t *testing.T) {
	s := New(testConfig(), nil)
	s.AddOption(hero.WithContextFunc(func(int, int) *gg.Context { return nil }))

	_, err := s.Run(context.Background(), Config{Frames: 1, Interval: time.Millisecond})
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestEnsembleRunsSeedsIndependently(t *testing.T) {
	base := New(testConfig(), nil)
	counts := make([]int, 4)
	e := NewEnsemble(base, 4, 100).WithObservers(func(run int) []hero.Observer {
		return []hero.Observer{hero.ObserverFunc(func(hero.Frame, image.Image) { counts[run]++ })}
	})

	results, err := e.Run(context.Background(), Config{Frames: 50, Interval: 20 * time.Millisecond})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, 50, r.Frames)
		assert.Equal(t, 50, counts[i])
	}
}

func TestEnsembleIsDeterministicPerSeed(t *testing.T) {
	run := func() []*Result {
		res, err := NewEnsemble(New(testConfig(), nil), 2, 5).Run(context.Background(), Config{Frames: 120, Interval: 16 * time.Millisecond})
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	for i := range a {
		assert.Equal(t, a[i].Final, b[i].Final)
	}
}

func TestEnsembleReportsErrors(t *testing.T) {
	_, err := NewEnsemble(New(testConfig(), nil), 2, 1).Run(context.Background(), Config{})
	assert.Error(t, err)
}

func TestRunRealtimeStopsAtFrameCount(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(testConfig(), nil)
	var mu sync.Mutex
	var frames []hero.Frame
	s.AddObserver(hero.ObserverFunc(func(f hero.Frame, _ image.Image) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	}))

	result, err := s.RunRealtime(context.Background(), Config{Frames: 5, Interval: 2 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Frames)
	assert.Positive(t, result.Elapsed)
	assert.Len(t, result.Final.Lines, linefield.WorkingSetSize)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, frames, 5)
	assert.Equal(t, linefield.FallbackFrameMs, frames[0].DtMs)
	for i := 1; i < len(frames); i++ {
		assert.Greater(t, frames[i].TS, frames[i-1].TS)
	}
}

func TestRunRealtimeAppliesResizes(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(testConfig(), nil)
	var mu sync.Mutex
	var widths []float64
	s.AddObserver(hero.ObserverFunc(func(f hero.Frame, _ image.Image) {
		mu.Lock()
		widths = append(widths, f.Snapshot.Width)
		mu.Unlock()
	}))

	_, err := s.RunRealtime(context.Background(), Config{
		Frames:   4,
		Interval: 2 * time.Millisecond,
		Resizes:  map[int]Bounds{2: {Width: 120, Height: 300}},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{600, 600, 120, 120}, widths)
}

func TestRunRealtimeCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := New(testConfig(), nil).RunRealtime(ctx, Config{Frames: 1 << 20, Interval: time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, result)
	assert.Less(t, result.Frames, 1<<20)
}

func TestRunRealtimeNoContext(t *testing.T) {
	s := New(testConfig(), nil)
	s.AddOption(hero.WithContextFunc(func(int, int) *gg.Context { return nil }))

	_, err := s.RunRealtime(context.Background(), Config{Frames: 3, Interval: time.Millisecond})
	assert.ErrorIs(t, err, ErrNoContext)
}
