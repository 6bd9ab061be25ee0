// Package feature builds the pyramidal color and edge histogram descriptor
// used to compare frames.
package feature

import (
	"context"
	"fmt"

	"github.com/five82/hecate/internal/frame"
	"github.com/five82/hecate/internal/imaging"
	"github.com/five82/hecate/internal/worker"
)

const (
	orientationRange = 180
	magnitudeRange   = 256
)

// Params sets the descriptor shape.
type Params struct {
	Levels          int
	ColorBins       int
	OrientationBins int
	MagnitudeBins   int
}

// Patches returns the number of patches over all pyramid levels: sum of 4^l.
func (p Params) Patches() int {
	n := 0
	for l := 0; l < p.Levels; l++ {
		n += 1 << (2 * l)
	}
	return n
}

// Dim returns the descriptor length: every patch's color histogram followed
// by every patch's edge histogram.
func (p Params) Dim() int {
	return p.Patches() * (3*p.ColorBins + p.OrientationBins + p.MagnitudeBins)
}

func (p Params) validate() error {
	if p.Levels < 1 || p.ColorBins < 1 || p.OrientationBins < 1 || p.MagnitudeBins < 1 {
		return fmt.Errorf("invalid descriptor params %+v", p)
	}
	return nil
}

// Descriptors is a dense frames x Dim matrix. Rows of invalid frames are zero.
type Descriptors struct {
	dim  int
	data []float64
}

// NewDescriptors allocates a zero rows x dim matrix.
func NewDescriptors(rows, dim int) *Descriptors {
	return &Descriptors{dim: dim, data: make([]float64, rows*dim)}
}

// Row returns the descriptor of frame i. The slice aliases the matrix.
func (d *Descriptors) Row(i int) []float64 {
	return d.data[i*d.dim : (i+1)*d.dim : (i+1)*d.dim]
}

// Dim returns the row length.
func (d *Descriptors) Dim() int { return d.dim }

// Len returns the number of rows.
func (d *Descriptors) Len() int {
	if d.dim == 0 {
		return 0
	}
	return len(d.data) / d.dim
}

// Rows collects the rows for idx in order.
func (d *Descriptors) Rows(idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for k, i := range idx {
		out[k] = d.Row(i)
	}
	return out
}

// Extract computes descriptors for every valid frame in parallel.
func Extract(ctx context.Context, store *frame.Store, infos []frame.Info, p Params, workers int, onProgress func(worker.Progress)) (*Descriptors, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	d := NewDescriptors(store.Len(), p.Dim())
	err := worker.ForEach(ctx, store.Len(), workers, func(i int) error {
		if !infos[i].Valid {
			return nil
		}
		Describe(store.At(i), p, d.Row(i))
		return nil
	}, onProgress)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// patch is one cell of the pyramid grid.
type patch struct {
	x, y, w, h int
}

// grid lists the patches of every level, x outer then y.
func grid(width, height, levels int) []patch {
	var out []patch
	for l := 0; l < levels; l++ {
		n := 1 << l
		pw, ph := width/n, height/n
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				out = append(out, patch{x: x * pw, y: y * ph, w: pw, h: ph})
			}
		}
	}
	return out
}

// Describe writes the descriptor of f into dst, which must have length p.Dim().
func Describe(f *frame.Frame, p Params, dst []float64) {
	patches := grid(f.Width, f.Height, p.Levels)
	colorSize := 3 * p.ColorBins
	edgeSize := p.OrientationBins + p.MagnitudeBins
	edgeBase := len(patches) * colorSize

	hue, sat, val := imaging.HSVPlanes(f)
	gray := imaging.ToGray(f)

	for k, c := range patches {
		out := dst[k*colorSize : (k+1)*colorSize]
		for ch, plane := range []*imaging.Gray{hue, sat, val} {
			h := imaging.PlaneHistogram(plane.Crop(c.x, c.y, c.w, c.h), p.ColorBins)
			imaging.L2Normalize(h)
			copy(out[ch*p.ColorBins:], h)
		}

		edgeHistogram(gray.Crop(c.x, c.y, c.w, c.h), p, dst[edgeBase+k*edgeSize:edgeBase+(k+1)*edgeSize])
	}
}

// edgeHistogram writes the normalized Scharr orientation and magnitude
// histograms of g into dst.
func edgeHistogram(g *imaging.Gray, p Params, dst []float64) {
	if g.Width == 0 || g.Height == 0 {
		return
	}
	gx, gy := imaging.Gradient(g.Float(1), g.Width, g.Height, imaging.Scharr)

	ori := imaging.Histogram(imaging.Orientation(gx, gy), p.OrientationBins, 0, orientationRange)
	mag := imaging.Histogram(imaging.Magnitude(gx, gy), p.MagnitudeBins, 0, magnitudeRange)
	imaging.L2Normalize(ori)
	imaging.L2Normalize(mag)

	copy(dst, ori)
	copy(dst[p.OrientationBins:], mag)
}
