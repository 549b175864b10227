package carve

// RemoveSeam deletes the seam's pixels from the intensity and RGB buffers.
// In each row the pixels right of the seam, up to the logical width, move
// left by one column. stride is the allocated row width of both buffers.
// Columns at and beyond width-1 are stale afterwards.
func RemoveSeam(gray []int, rgb []uint8, stride, width int, seam Seam) {
	for _, p := range seam {
		shiftRow(gray[p.Row*stride:(p.Row+1)*stride], p.Col, width, 1)
		shiftRow(rgb[p.Row*stride*3:(p.Row+1)*stride*3], p.Col, width, 3)
	}
}

// removeFromBuffer applies the same left shift to any per-pixel buffer with
// one element per pixel.
func removeFromBuffer[T any](buf []T, stride, width int, seam Seam) {
	for _, p := range seam {
		shiftRow(buf[p.Row*stride:(p.Row+1)*stride], p.Col, width, 1)
	}
}

// shiftRow drops pixel x from row, where each pixel spans size elements.
// copy handles the overlapping ranges.
func shiftRow[T any](row []T, x, width, size int) {
	if x >= width-1 {
		return
	}
	copy(row[x*size:(width-1)*size], row[(x+1)*size:width*size])
}
