package export

import (
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"sync"

	"github.com/san-kum/gridhero/internal/hero"
)

var ErrNoFrames = errors.New("export: no frames recorded")

// GIFRecorder captures renderer frames for an animated GIF.
type GIFRecorder struct {
	mu     sync.Mutex
	every  int
	limit  int
	seen   int
	frames []*image.Paletted
}

// NewGIFRecorder keeps every nth frame, up to limit frames (0 = unbounded).
func NewGIFRecorder(every, limit int) *GIFRecorder {
	if every < 1 {
		every = 1
	}
	return &GIFRecorder{every: every, limit: limit}
}

func (g *GIFRecorder) OnFrame(_ hero.Frame, img image.Image) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen++
	if img == nil || (g.seen-1)%g.every != 0 {
		return
	}
	if g.limit > 0 && len(g.frames) >= g.limit {
		return
	}
	g.frames = append(g.frames, quantize(img))
}

func quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(dst, b, img, b.Min)
	return dst
}

func (g *GIFRecorder) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.frames)
}

func (g *GIFRecorder) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frames = nil
	g.seen = 0
}

// Encode writes the recorded frames; delay is in 100ths of a second.
func (g *GIFRecorder) Encode(w io.Writer, delay int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (g *GIFRecorder) Save(path string, delay int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Encode(f, delay); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
