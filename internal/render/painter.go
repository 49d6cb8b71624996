package render

import (
	"github.com/fogleman/gg"
	"github.com/san-kum/gridhero/internal/linefield"
)

const (
	backgroundHold = 0.7

	GridAlpha     = 0.15
	GridWidth     = 1.0
	StreakWidth   = 2.0
	StreakPeak    = 0.8
	GlowBlur      = 15.0
	GlowAlpha     = 0.8
	glowPasses    = 4
	glowPassAlpha = 0.12
)

// Painter draws the hero scene onto a surface.
type Painter struct {
	Palette  Palette
	CellSize float64
}

func NewPainter(p Palette, cellSize float64) *Painter {
	if cellSize <= 0 {
		cellSize = linefield.DefaultCellSize
	}
	return &Painter{Palette: p, CellSize: cellSize}
}

// Background fills the surface with the vertical backdrop gradient.
func (p *Painter) Background(s *Surface) {
	dc := s.Context()
	if dc == nil {
		return
	}
	w, h := s.Width(), s.Height()
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := s.Device(0, 0)
	x1, y1 := s.Device(0, h)
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	grad.AddColorStop(0, WithAlpha(p.Palette.BackgroundTop, 1))
	grad.AddColorStop(backgroundHold, WithAlpha(p.Palette.BackgroundTop, 1))
	grad.AddColorStop(1, WithAlpha(p.Palette.BackgroundBottom, 1))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

// Grid strokes vertical lines at full opacity and horizontal lines that fade
// out toward the bottom of the surface.
func (p *Painter) Grid(s *Surface) {
	dc := s.Context()
	if dc == nil {
		return
	}
	w, h := s.Width(), s.Height()
	dc.SetLineWidth(GridWidth * s.DevicePixelRatio())

	dc.SetColor(WithAlpha(p.Palette.Accent, GridAlpha))
	for _, x := range linefield.GridLines(w, p.CellSize) {
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()
	}

	for _, y := range linefield.GridLines(h, p.CellSize) {
		alpha := linefield.HorizontalAlpha(y, h)
		if alpha <= 0 {
			continue
		}
		dc.SetColor(WithAlpha(p.Palette.Accent, GridAlpha*alpha))
		dc.DrawLine(0, y, w, y)
		dc.Stroke()
	}
}

// Streak paints one flowing line at column x with a soft glow.
func (p *Painter) Streak(s *Surface, x float64, span linefield.Span) {
	dc := s.Context()
	if dc == nil || !span.Visible() {
		return
	}
	dpr := s.DevicePixelRatio()
	gx0, gy0 := s.Device(x, span.Start)
	gx1, gy1 := s.Device(x, span.End)

	// glow: widening passes fading toward the blur radius
	for i := glowPasses; i >= 1; i-- {
		frac := float64(i) / glowPasses
		grad := gg.NewLinearGradient(gx0, gy0, gx1, gy1)
		grad.AddColorStop(0, WithAlpha(p.Palette.Accent, 0))
		grad.AddColorStop(0.5, WithAlpha(p.Palette.Accent, GlowAlpha*glowPassAlpha*(1-frac+1.0/glowPasses)))
		grad.AddColorStop(1, WithAlpha(p.Palette.Accent, 0))
		dc.SetStrokeStyle(grad)
		dc.SetLineWidth((StreakWidth + GlowBlur*frac) * dpr)
		dc.DrawLine(x, span.ClipTop, x, span.ClipEnd)
		dc.Stroke()
	}

	grad := gg.NewLinearGradient(gx0, gy0, gx1, gy1)
	grad.AddColorStop(0, WithAlpha(p.Palette.Accent, 0))
	grad.AddColorStop(0.5, WithAlpha(p.Palette.Accent, StreakPeak))
	grad.AddColorStop(1, WithAlpha(p.Palette.Accent, 0))
	dc.SetStrokeStyle(grad)
	dc.SetLineWidth(StreakWidth * dpr)
	dc.DrawLine(x, span.ClipTop, x, span.ClipEnd)
	dc.Stroke()
}
