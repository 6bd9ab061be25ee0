package imaging

import (
	"gonum.org/v1/gonum/floats"
)

// Histogram counts values into bins uniform bins over [lo, hi). Values
// outside the range are dropped.
func Histogram(values []float64, bins int, lo, hi float64) []float64 {
	hist := make([]float64, bins)
	scale := float64(bins) / (hi - lo)
	for _, v := range values {
		if v < lo || v >= hi {
			continue
		}
		b := int((v - lo) * scale)
		if b >= bins {
			b = bins - 1
		}
		hist[b]++
	}
	return hist
}

// GrayHistogram counts the 256 gray levels of g.
func GrayHistogram(g *Gray) []float64 {
	hist := make([]float64, 256)
	for _, v := range g.Pix {
		hist[v]++
	}
	return hist
}

// PlaneHistogram bins an 8-bit plane into bins uniform bins over [0, 256).
func PlaneHistogram(g *Gray, bins int) []float64 {
	hist := make([]float64, bins)
	for _, v := range g.Pix {
		hist[int(v)*bins/256]++
	}
	return hist
}

// L2Normalize scales v in place to unit Euclidean norm. Zero vectors are left as is.
func L2Normalize(v []float64) {
	n := floats.Norm(v, 2)
	if n == 0 {
		return
	}
	floats.Scale(1/n, v)
}
