package export

import (
	"image"

	"github.com/fogleman/gg"
)

func WritePNG(path string, img image.Image) error {
	if img == nil {
		return ErrNoFrames
	}
	return gg.SavePNG(path, img)
}
