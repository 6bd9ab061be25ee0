package imaging

import (
	"math"
)

// Kernel selects a 3x3 derivative operator.
type Kernel int

const (
	// Sobel uses the [1 2 1] smoothing weights.
	Sobel Kernel = iota
	// Scharr uses the [3 10 3] smoothing weights.
	Scharr
)

func (k Kernel) weights() (side, center float64) {
	if k == Scharr {
		return 3, 10
	}
	return 1, 2
}

// Gradient computes the x and y derivatives of a w x h float image with
// reflect-101 borders.
func Gradient(src []float64, w, h int, k Kernel) (gx, gy []float64) {
	side, center := k.weights()
	gx = make([]float64, w*h)
	gy = make([]float64, w*h)
	for y := 0; y < h; y++ {
		up, down := reflect(y-1, h)*w, reflect(y+1, h)*w
		row := y * w
		for x := 0; x < w; x++ {
			l, r := reflect(x-1, w), reflect(x+1, w)
			gx[row+x] = side*(src[up+r]-src[up+l]) +
				center*(src[row+r]-src[row+l]) +
				side*(src[down+r]-src[down+l])
			gy[row+x] = side*(src[down+l]-src[up+l]) +
				center*(src[down+x]-src[up+x]) +
				side*(src[down+r]-src[up+r])
		}
	}
	return gx, gy
}

// Magnitude returns sqrt(gx^2 + gy^2) per pixel.
func Magnitude(gx, gy []float64) []float64 {
	out := make([]float64, len(gx))
	for i := range gx {
		out[i] = math.Hypot(gx[i], gy[i])
	}
	return out
}

// Orientation returns the undirected gradient angle per pixel in degrees, [0, 180).
func Orientation(gx, gy []float64) []float64 {
	out := make([]float64, len(gx))
	for i := range gx {
		deg := math.Atan2(gy[i], gx[i]) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		if deg >= 180 {
			deg -= 180
		}
		out[i] = deg
	}
	return out
}
