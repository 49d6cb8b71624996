package render

import (
	"image/color"
	"testing"

	"github.com/fogleman/gg"
	"github.com/san-kum/gridhero/internal/linefield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceAcquireScalesBackingStore(t *testing.T) {
	s := NewSurface(nil)
	require.True(t, s.Acquire(300, 200, 2))

	pw, ph := s.PixelSize()
	assert.Equal(t, 600, pw)
	assert.Equal(t, 400, ph)
	assert.Equal(t, Transform{ScaleX: 2, ScaleY: 2}, s.Transform())

	b := s.Image().Bounds()
	assert.Equal(t, 600, b.Dx())
	assert.Equal(t, 400, b.Dy())
}

func TestSurfaceResizeIsIdempotent(t *testing.T) {
	allocs := 0
	s := NewSurface(func(w, h int) *gg.Context {
		allocs++
		return NewContext(w, h)
	})
	require.True(t, s.Acquire(640, 480, 1.5))

	s.Resize(800, 600, 1.5)
	first := s.Transform()
	w1, h1 := s.PixelSize()

	s.Resize(800, 600, 1.5)
	assert.Equal(t, first, s.Transform())
	w2, h2 := s.PixelSize()
	assert.Equal(t, w1, w2)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 2, allocs)
	assert.Equal(t, 1200, w2)
	assert.Equal(t, 900, h2)
}

func TestSurfaceWithoutContext(t *testing.T) {
	s := NewSurface(func(int, int) *gg.Context { return nil })
	assert.False(t, s.Acquire(100, 100, 1))
	assert.Nil(t, s.Image())

	p := NewPainter(DefaultTheme, 60)
	assert.NotPanics(t, func() {
		p.Background(s)
		p.Grid(s)
		p.Streak(s, 0, linefield.StreakSpan(0.1, 100, 150))
		s.Resize(50, 50, 2)
	})
}

func TestSurfaceDegenerateGeometry(t *testing.T) {
	s := NewSurface(nil)
	require.True(t, s.Acquire(-10, 0, 0))
	assert.Equal(t, 0.0, s.Width())
	assert.Equal(t, 1.0, s.DevicePixelRatio())
	pw, ph := s.PixelSize()
	assert.Zero(t, pw)
	assert.Zero(t, ph)
}

func nrgbaAt(t *testing.T, s *Surface, x, y int) color.NRGBA {
	t.Helper()
	return color.NRGBAModel.Convert(s.Image().At(x, y)).(color.NRGBA)
}

func TestPainterBackgroundGradient(t *testing.T) {
	s := NewSurface(nil)
	require.True(t, s.Acquire(100, 100, 1))
	p := NewPainter(ThemeIndigo, 60)
	p.Background(s)

	top := nrgbaAt(t, s, 50, 1)
	assert.InDelta(t, 12, int(top.R), 2)
	assert.InDelta(t, 14, int(top.G), 2)
	assert.InDelta(t, 28, int(top.B), 2)

	mid := nrgbaAt(t, s, 50, 60)
	assert.InDelta(t, 12, int(mid.R), 2)

	bottom := nrgbaAt(t, s, 50, 99)
	assert.Greater(t, int(bottom.R), 60)
	assert.Greater(t, int(bottom.B), 110)
}

func TestPainterStreakBrightensColumn(t *testing.T) {
	s := NewSurface(nil)
	require.True(t, s.Acquire(240, 300, 1))
	p := NewPainter(ThemeIndigo, 60)
	p.Background(s)
	before := nrgbaAt(t, s, 120, 75)

	p.Streak(s, 120, linefield.StreakSpan(0, 300, 150))
	after := nrgbaAt(t, s, 120, 75)
	assert.Greater(t, int(after.B), int(before.B))

	far := nrgbaAt(t, s, 200, 75)
	assert.Equal(t, before, far)
}

func TestPaletteOverride(t *testing.T) {
	p, err := ThemeIndigo.Override("#000000", "", "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#000000", p.BackgroundTop.Hex())
	assert.Equal(t, ThemeIndigo.BackgroundBottom, p.BackgroundBottom)
	assert.Equal(t, "#ff0000", p.Accent.Hex())

	_, err = ThemeIndigo.Override("nope", "", "")
	assert.Error(t, err)
}

func TestThemes(t *testing.T) {
	p, ok := GetTheme("ocean")
	assert.True(t, ok)
	assert.Equal(t, "ocean", p.Name)

	p, ok = GetTheme("missing")
	assert.False(t, ok)
	assert.Equal(t, DefaultTheme.Name, p.Name)

	assert.Equal(t, ThemeOcean.Name, NextTheme("indigo").Name)
	assert.Equal(t, Themes[0].Name, NextTheme(Themes[len(Themes)-1].Name).Name)
	assert.Len(t, ThemeNames(), len(Themes))
}

func TestBackgroundAt(t *testing.T) {
	assert.Equal(t, ThemeIndigo.BackgroundTop, ThemeIndigo.BackgroundAt(0.5))
	assert.Equal(t, ThemeIndigo.BackgroundBottom.Hex(), ThemeIndigo.BackgroundAt(1).Hex())
}
