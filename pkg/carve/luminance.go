package carve

// NTSC luminance weights
const (
	weightR = 0.299
	weightG = 0.587
	weightB = 0.114
)

// Luminance projects a packed RGB buffer of height rows by width columns onto
// a single intensity channel. Each value is 0.299R + 0.587G + 0.114B
// truncated toward zero.
func Luminance(rgb []uint8, height, width int) []int {
	gray := make([]int, height*width)
	for i := range gray {
		p := rgb[i*3 : i*3+3 : i*3+3]
		gray[i] = luma(p[0], p[1], p[2])
	}
	return gray
}

func luma(r, g, b uint8) int {
	// explicit conversions keep the compiler from fusing into FMA, so the
	// truncated result matches plain double arithmetic on every arch
	return int(float64(weightR*float64(r)) + float64(weightG*float64(g)) + float64(weightB*float64(b)))
}
