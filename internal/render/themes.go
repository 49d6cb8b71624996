package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette defines the tones used by the painter.
type Palette struct {
	Name             string
	BackgroundTop    colorful.Color
	BackgroundBottom colorful.Color
	Accent           colorful.Color
	Text             colorful.Color
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Available themes
var (
	ThemeIndigo = Palette{
		Name:             "indigo",
		BackgroundTop:    rgb(12, 14, 28),
		BackgroundBottom: rgb(75, 0, 130),
		Accent:           rgb(59, 130, 246),
		Text:             rgb(255, 255, 255),
	}

	ThemeOcean = Palette{
		Name:             "ocean",
		BackgroundTop:    rgb(0, 26, 51),
		BackgroundBottom: rgb(0, 119, 190),
		Accent:           rgb(0, 168, 204),
		Text:             rgb(224, 240, 255),
	}

	ThemeEmber = Palette{
		Name:             "ember",
		BackgroundTop:    rgb(45, 27, 46),
		BackgroundBottom: rgb(160, 40, 20),
		Accent:           rgb(255, 107, 107),
		Text:             rgb(255, 245, 245),
	}

	ThemeMatrix = Palette{
		Name:             "matrix",
		BackgroundTop:    rgb(0, 17, 0),
		BackgroundBottom: rgb(0, 68, 0),
		Accent:           rgb(0, 255, 0),
		Text:             rgb(136, 255, 136),
	}

	ThemeMono = Palette{
		Name:             "mono",
		BackgroundTop:    rgb(10, 10, 10),
		BackgroundBottom: rgb(60, 60, 60),
		Accent:           rgb(220, 220, 220),
		Text:             rgb(255, 255, 255),
	}

	DefaultTheme = ThemeIndigo

	Themes = []Palette{
		ThemeIndigo,
		ThemeOcean,
		ThemeEmber,
		ThemeMatrix,
		ThemeMono,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) (Palette, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return DefaultTheme, false
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Palette {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return DefaultTheme
}

// Override replaces the palette tones with the given hex colors. Empty
// strings keep the current tone.
func (p Palette) Override(top, bottom, accent string) (Palette, error) {
	for _, o := range []struct {
		hex string
		dst *colorful.Color
	}{
		{top, &p.BackgroundTop},
		{bottom, &p.BackgroundBottom},
		{accent, &p.Accent},
	} {
		if o.hex == "" {
			continue
		}
		c, err := colorful.Hex(o.hex)
		if err != nil {
			return p, fmt.Errorf("render: invalid color %q: %w", o.hex, err)
		}
		*o.dst = c
	}
	return p, nil
}

// WithAlpha converts c to a non-premultiplied color with opacity a in [0, 1].
func WithAlpha(c colorful.Color, a float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	a = math.Max(0, math.Min(1, a))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}

// BackgroundAt is the gradient tone at fraction t of the surface height.
func (p Palette) BackgroundAt(t float64) colorful.Color {
	if t <= backgroundHold {
		return p.BackgroundTop
	}
	t = math.Min(1, (t-backgroundHold)/(1-backgroundHold))
	return p.BackgroundTop.BlendRgb(p.BackgroundBottom, t)
}
