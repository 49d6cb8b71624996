package viz

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// logical pixels covered by one terminal cell
	CellPixelWidth  = 8
	CellPixelHeight = 16

	halfBlock = '▀'
)

// Cell is one terminal character showing two vertically stacked samples.
type Cell struct {
	Upper, Lower colorful.Color
	Rune         rune
	Text         colorful.Color
}

// Canvas downsamples a raster into half-block terminal cells.
type Canvas struct {
	Width, Height int
	Grid          [][]Cell
}

func NewCanvas(w, h int) *Canvas {
	w, h = max(1, w), max(1, h)
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]Cell, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]Cell, w)
	}
	c.Clear()
	return c
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = Cell{Rune: halfBlock}
		}
	}
}

// Sample fills every cell with the box-averaged colors of img.
func (c *Canvas) Sample(img image.Image) {
	c.Clear()
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Empty() {
		return
	}
	rows := c.Height * 2
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			x0 := b.Min.X + col*b.Dx()/c.Width
			x1 := b.Min.X + (col+1)*b.Dx()/c.Width
			yt := b.Min.Y + (row*2)*b.Dy()/rows
			ym := b.Min.Y + (row*2+1)*b.Dy()/rows
			yb := b.Min.Y + (row*2+2)*b.Dy()/rows
			cell := &c.Grid[row][col]
			cell.Upper = average(img, x0, yt, x1, ym)
			cell.Lower = average(img, x0, ym, x1, yb)
		}
	}
}

// average returns the mean color of the rectangle [x0,x1) x [y0,y1),
// widening empty rectangles to a single pixel.
func average(img image.Image, x0, y0, x1, y1 int) colorful.Color {
	x1, y1 = max(x1, x0+1), max(y1, y0+1)
	if rgba, ok := img.(*image.RGBA); ok {
		return averageRGBA(rgba, x0, y0, x1, y1)
	}
	var r, g, b, n float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += float64(cr)
			g += float64(cg)
			b += float64(cb)
			n++
		}
	}
	return colorful.Color{R: r / n / 0xffff, G: g / n / 0xffff, B: b / n / 0xffff}
}

func averageRGBA(img *image.RGBA, x0, y0, x1, y1 int) colorful.Color {
	r0 := image.Rect(x0, y0, x1, y1).Intersect(img.Rect)
	if r0.Empty() {
		return colorful.Color{}
	}
	var r, g, b, n float64
	for y := r0.Min.Y; y < r0.Max.Y; y++ {
		off := img.PixOffset(r0.Min.X, y)
		for x := r0.Min.X; x < r0.Max.X; x++ {
			r += float64(img.Pix[off])
			g += float64(img.Pix[off+1])
			b += float64(img.Pix[off+2])
			off += 4
			n++
		}
	}
	return colorful.Color{R: r / n / 255, G: g / n / 255, B: b / n / 255}
}

// Overlay writes lines of text centered on the canvas.
func (c *Canvas) Overlay(lines []string, fg colorful.Color) {
	top := (c.Height - len(lines)) / 2
	for i, line := range lines {
		row := top + i
		if row < 0 || row >= c.Height {
			continue
		}
		runes := []rune(line)
		left := (c.Width - len(runes)) / 2
		for j, r := range runes {
			col := left + j
			if col < 0 || col >= c.Width {
				continue
			}
			c.Grid[row][col].Rune = r
			c.Grid[row][col].Text = fg
		}
	}
}

// WithOverlay returns a copy of the canvas with lines overlaid, leaving the
// sampled cells untouched.
func (c *Canvas) WithOverlay(lines []string, fg colorful.Color) *Canvas {
	out := &Canvas{Width: c.Width, Height: c.Height, Grid: make([][]Cell, len(c.Grid))}
	for i, row := range c.Grid {
		out.Grid[i] = append([]Cell(nil), row...)
	}
	out.Overlay(lines, fg)
	return out
}

// Text returns the characters of the canvas without colors.
func (c *Canvas) Text() string {
	var b strings.Builder
	for _, row := range c.Grid {
		for _, cell := range row {
			b.WriteRune(cell.Rune)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for _, cell := range row {
			b.WriteString(cell.render())
		}
		if i < len(c.Grid)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (cell Cell) render() string {
	if cell.Rune == halfBlock {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(cell.Upper.Clamped().Hex())).
			Background(lipgloss.Color(cell.Lower.Clamped().Hex())).
			Render(string(halfBlock))
	}
	bg := cell.Upper.BlendRgb(cell.Lower, 0.5)
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(cell.Text.Clamped().Hex())).
		Background(lipgloss.Color(bg.Clamped().Hex())).
		Render(string(cell.Rune))
}
