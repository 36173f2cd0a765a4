package stage

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Pixels returns the initial RGBA8 contents of the render-target texture.
// Opaque white leaves vertex colors untouched when sampled.
func (t TextureParams) Pixels() []byte {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img.Pix
}
