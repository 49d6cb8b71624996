package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"
)

// ContextFunc allocates a backing store of the given pixel size. Returning nil
// means no 2D context is available.
type ContextFunc func(pixelW, pixelH int) *gg.Context

// NewContext is the default ContextFunc.
func NewContext(pixelW, pixelH int) *gg.Context {
	return gg.NewContext(max(1, pixelW), max(1, pixelH))
}

// Transform maps logical pixels to backing-store pixels.
type Transform struct {
	ScaleX, ScaleY float64
}

// Surface is a drawing target whose backing store is device scaled.
type Surface struct {
	newContext ContextFunc
	dc         *gg.Context

	width, height  float64
	dpr            float64
	pixelW, pixelH int
	transform      Transform
}

func NewSurface(fn ContextFunc) *Surface {
	if fn == nil {
		fn = NewContext
	}
	return &Surface{newContext: fn, dpr: 1}
}

// Acquire sizes the surface and creates its drawing context. It reports
// false when no context could be obtained.
func (s *Surface) Acquire(width, height, dpr float64) bool {
	s.setGeometry(width, height, dpr)
	s.dc = s.newContext(s.pixelW, s.pixelH)
	if s.dc == nil {
		return false
	}
	s.applyTransform()
	return true
}

// Resize recomputes the pixel size and scaling transform. Calling it again
// with the same geometry leaves the surface unchanged.
func (s *Surface) Resize(width, height, dpr float64) {
	pw, ph := s.pixelW, s.pixelH
	s.setGeometry(width, height, dpr)
	if s.dc != nil && (pw != s.pixelW || ph != s.pixelH) {
		if dc := s.newContext(s.pixelW, s.pixelH); dc != nil {
			s.dc = dc
		}
	}
	s.applyTransform()
}

func (s *Surface) setGeometry(width, height, dpr float64) {
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	s.width, s.height = clampSize(width), clampSize(height)
	s.dpr = dpr
	s.pixelW = int(math.Floor(s.width * dpr))
	s.pixelH = int(math.Floor(s.height * dpr))
}

func (s *Surface) applyTransform() {
	s.transform = Transform{ScaleX: s.dpr, ScaleY: s.dpr}
	if s.dc == nil {
		return
	}
	s.dc.Identity()
	s.dc.Scale(s.dpr, s.dpr)
}

func clampSize(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (s *Surface) Width() float64            { return s.width }
func (s *Surface) Height() float64           { return s.height }
func (s *Surface) DevicePixelRatio() float64 { return s.dpr }
func (s *Surface) PixelSize() (int, int)     { return s.pixelW, s.pixelH }
func (s *Surface) Transform() Transform      { return s.transform }
func (s *Surface) Context() *gg.Context      { return s.dc }

// Device converts a logical point to backing-store coordinates.
func (s *Surface) Device(x, y float64) (float64, float64) {
	return x * s.transform.ScaleX, y * s.transform.ScaleY
}

func (s *Surface) Image() image.Image {
	if s.dc == nil {
		return nil
	}
	return s.dc.Image()
}
