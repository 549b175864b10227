package processing

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/seamcarver/pkg/carve"
	"github.com/menta2k/seamcarver/pkg/types"
)

var (
	seamColor = color.NRGBA{255, 0, 0, 255} // removed seams
	boxColor  = color.NRGBA{0, 255, 0, 255} // protected subjects
)

// EnergyImage renders the Sobel energy of every pixel, scaled so the
// strongest edge is white.
func EnergyImage(img image.Image) *image.Gray {
	rgb, w, h := ToRGB(img)
	gray := carve.Luminance(rgb, h, w)

	energy := make([]float64, w*h)
	var peak float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			e := carve.LocalEnergy(gray, h, w, w, y, x)
			energy[y*w+x] = e
			peak = math.Max(peak, e)
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	if peak == 0 {
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = uint8(energy[y*w+x] / peak * 255)
		}
	}
	return out
}

// CreateDebugOverlay draws removed seams (in original coordinates) and
// protected boxes over a copy of the source image
func CreateDebugOverlay(img image.Image, seams []carve.Seam, boxes []types.Box) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	for _, seam := range seams {
		for _, p := range seam {
			setPixel(nrgba, p.Col, p.Row, seamColor)
		}
	}

	stroke := int(math.Max(2, 0.004*float64(min(w, h))))
	for _, b := range boxes {
		if !b.Empty() {
			drawBox(nrgba, b, w, h, boxColor, stroke)
		}
	}
	return nrgba
}

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= img.Bounds().Dx() || y >= img.Bounds().Dy() {
		return
	}
	i := y*img.Stride + x*4
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}

func drawBox(img *image.NRGBA, box types.Box, w, h int, c color.NRGBA, stroke int) {
	x0, y0, x1, y1 := box.Pixels(w, h)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	for x := x0; x < x1; x++ {
		setPixel(img, x, y, c)
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	for y := y0; y < y1; y++ {
		setPixel(img, x, y, c)
	}
}
