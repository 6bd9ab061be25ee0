// Package imaging provides the image primitives the analysis stages compose:
// grayscale conversion, blur, gradients, histograms, Otsu thresholds, Canny
// edges, morphology and HSV planes. Conventions follow OpenCV's 8-bit ones.
package imaging

import (
	"github.com/five82/hecate/internal/frame"
)

// Gray is a single-channel 8-bit image.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a black image.
func NewGray(w, h int) *Gray {
	return &Gray{Width: w, Height: h, Pix: make([]uint8, w*h)}
}

// At returns the value at (x, y).
func (g *Gray) At(x, y int) uint8 { return g.Pix[y*g.Width+x] }

// Luma converts RGB to gray with BT.601 weights in 14-bit fixed point.
func Luma(f *frame.Frame) *Gray {
	g := NewGray(f.Width, f.Height)
	for i := range g.Pix {
		p := f.Pix[i*3 : i*3+3 : i*3+3]
		g.Pix[i] = uint8((int(p[0])*4899 + int(p[1])*9617 + int(p[2])*1868 + 8192) >> 14)
	}
	return g
}

// ToGray returns the denoised grayscale form of f: luma followed by a 3x3 Gaussian blur.
func ToGray(f *frame.Frame) *Gray {
	return GaussianBlur3(Luma(f))
}

// GaussianBlur3 applies the separable [1 2 1]/4 kernel with reflect-101 borders.
func GaussianBlur3(src *Gray) *Gray {
	w, h := src.Width, src.Height
	tmp := make([]int, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			tmp[y*w+x] = int(row[reflect(x-1, w)]) + 2*int(row[x]) + int(row[reflect(x+1, w)])
		}
	}

	dst := NewGray(w, h)
	for y := 0; y < h; y++ {
		up, down := reflect(y-1, h)*w, reflect(y+1, h)*w
		for x := 0; x < w; x++ {
			v := tmp[up+x] + 2*tmp[y*w+x] + tmp[down+x]
			dst.Pix[y*w+x] = uint8((v + 8) >> 4)
		}
	}
	return dst
}

// Crop copies the w x h patch at (x, y).
func (g *Gray) Crop(x, y, w, h int) *Gray {
	dst := NewGray(w, h)
	for r := 0; r < h; r++ {
		copy(dst.Pix[r*w:(r+1)*w], g.Pix[(y+r)*g.Width+x:(y+r)*g.Width+x+w])
	}
	return dst
}

// Float returns the pixels as float64 multiplied by scale.
func (g *Gray) Float(scale float64) []float64 {
	out := make([]float64, len(g.Pix))
	for i, v := range g.Pix {
		out[i] = float64(v) * scale
	}
	return out
}

// reflect maps an out-of-range index with reflect-101 border handling (gfedcb|abcdefgh|gfedcba).
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
