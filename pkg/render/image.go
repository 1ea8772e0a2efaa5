package render

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Scale enlarges img by an integer factor with nearest-neighbor sampling.
// Factors below 2 return img unchanged.
func Scale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}

// SavePNG writes img to path. The format follows the file extension.
func SavePNG(path string, img image.Image) error {
	return imaging.Save(img, path)
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
