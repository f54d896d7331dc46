package imagecache

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail scales img down to width pixels, keeping the aspect ratio.
// Images already narrower than width are returned unchanged.
func Thumbnail(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	if width <= 0 || width >= origWidth || origWidth == 0 {
		return img
	}

	ratio := float64(width) / float64(origWidth)
	height := max(1, int(float64(origHeight)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
