package processing

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/seamcarver/pkg/types"
)

// ToRGB packs an image into a row-major RGB buffer. Alpha is discarded.
func ToRGB(img image.Image) (rgb []uint8, width, height int) {
	src := imaging.Clone(img)
	width, height = src.Bounds().Dx(), src.Bounds().Dy()

	rgb = make([]uint8, width*height*3)
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width*4]
		out := rgb[y*width*3 : (y+1)*width*3]
		for x := 0; x < width; x++ {
			out[x*3+0] = row[x*4+0]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return rgb, width, height
}

// FromRGB builds an opaque image from the leftmost width columns of an RGB
// buffer whose rows are stride pixels wide.
func FromRGB(rgb []uint8, height, stride, width int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := rgb[y*stride*3 : y*stride*3+width*3]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			row[x*4+0] = src[x*3+0]
			row[x*4+1] = src[x*3+1]
			row[x*4+2] = src[x*3+2]
			row[x*4+3] = 0xff
		}
	}
	return dst
}

// BoxesToBias turns protected boxes into a per-pixel energy bias of the given
// weight for a width x height image. Overlapping boxes do not stack.
func BoxesToBias(boxes []types.Box, width, height int, weight float64) []float64 {
	bias := make([]float64, width*height)
	for _, b := range boxes {
		if b.Empty() {
			continue
		}
		x0, y0, x1, y1 := b.Pixels(width, height)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				bias[y*width+x] = weight
			}
		}
	}
	return bias
}
