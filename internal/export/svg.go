package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/gridhero/internal/linefield"
	"github.com/san-kum/gridhero/internal/render"
)

// FrameToSVG renders a snapshot as a vector image in logical pixels.
func FrameToSVG(snap linefield.Snapshot, p render.Palette, cellSize, streakLength float64) string {
	w, h := snap.Width, snap.Height
	accent := p.Accent.Hex()

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<defs>
<linearGradient id="bg" x1="0" y1="0" x2="0" y2="1">
<stop offset="0" stop-color="%s"/>
<stop offset="0.7" stop-color="%s"/>
<stop offset="1" stop-color="%s"/>
</linearGradient>
`, w, h, w, h, p.BackgroundTop.Hex(), p.BackgroundTop.Hex(), p.BackgroundBottom.Hex()))

	type streak struct {
		n    int
		id   string
		x    float64
		span linefield.Span
	}
	// A vertical line has a zero-width bounding box, so each glow filter
	// region is given in user space around its streak, 3 sigma wide.
	sigma := render.GlowBlur / 2
	pad := 3 * sigma

	var streaks []streak
	cols := linefield.Columns(w, cellSize)
	for i, l := range snap.Lines {
		if !l.Active() || l.Column >= cols {
			continue
		}
		span := linefield.StreakSpan(l.Progress, h, streakLength)
		if !span.Visible() {
			continue
		}
		s := streak{n: i, id: fmt.Sprintf("streak%d", i), x: float64(l.Column) * cellSize, span: span}
		streaks = append(streaks, s)
		sb.WriteString(fmt.Sprintf(`<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f">
<stop offset="0" stop-color="%s" stop-opacity="0"/>
<stop offset="0.5" stop-color="%s" stop-opacity="%.2f"/>
<stop offset="1" stop-color="%s" stop-opacity="0"/>
</linearGradient>
<filter id="glow%d" filterUnits="userSpaceOnUse" x="%.1f" y="%.1f" width="%.1f" height="%.1f"><feGaussianBlur stdDeviation="%.1f"/></filter>
`, s.id, s.x, span.Start, s.x, span.End, accent, accent, render.StreakPeak, accent,
			i, s.x-pad, span.ClipTop-pad, 2*pad, span.ClipEnd-span.ClipTop+2*pad, sigma))
	}
	sb.WriteString("</defs>\n")

	sb.WriteString(fmt.Sprintf(`<rect width="%.0f" height="%.0f" fill="url(#bg)"/>
<g stroke="%s" stroke-width="%.0f">
`, w, h, accent, render.GridWidth))
	for _, x := range linefield.GridLines(w, cellSize) {
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%.1f" stroke-opacity="%.3f"/>
`, x, x, h, render.GridAlpha))
	}
	for _, y := range linefield.GridLines(h, cellSize) {
		alpha := linefield.HorizontalAlpha(y, h)
		if alpha <= 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke-opacity="%.3f"/>
`, y, w, y, render.GridAlpha*alpha))
	}
	sb.WriteString("</g>\n")

	for _, s := range streaks {
		line := fmt.Sprintf(`x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"`, s.x, s.span.ClipTop, s.x, s.span.ClipEnd)
		sb.WriteString(fmt.Sprintf(`<line %s stroke="%s" stroke-opacity="%.2f" stroke-width="%.0f" filter="url(#glow%d)"/>
<line %s stroke="url(#%s)" stroke-width="%.0f"/>
`, line, accent, render.GlowAlpha*0.5, render.StreakWidth, s.n, line, s.id, render.StreakWidth))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
