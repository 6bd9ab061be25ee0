// Package metrics computes per-frame brightness, sharpness and uniformity and
// rejects low quality frames.
package metrics

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/five82/hecate/internal/frame"
	"github.com/five82/hecate/internal/imaging"
	"github.com/five82/hecate/internal/worker"
)

// Luma weights over normalized R, G, B.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// uniformityTopShare is the share of histogram bins counted as "top".
const uniformityTopShare = 0.05

// Brightness returns the mean luma-weighted value of f over [0, 1].
func Brightness(f *frame.Frame) float64 {
	n := f.Width * f.Height
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p := f.Pix[i*3 : i*3+3 : i*3+3]
		sum += lumaR*float64(p[0]) + lumaG*float64(p[1]) + lumaB*float64(p[2])
	}
	return sum / float64(n) / 255
}

// Sharpness returns the mean Sobel gradient magnitude of the normalized gray image.
func Sharpness(g *imaging.Gray) float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	gx, gy := imaging.Gradient(g.Float(1.0/255), g.Width, g.Height, imaging.Sobel)
	return stat.Mean(imaging.Magnitude(gx, gy), nil)
}

// Uniformity returns the share of pixels that fall in the most populated 5%
// of the 256 gray levels.
func Uniformity(g *imaging.Gray) float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	hist := imaging.GrayHistogram(g)
	sort.Sort(sort.Reverse(sort.Float64Slice(hist)))
	top := int(float64(len(hist)) * uniformityTopShare)
	var sum float64
	for _, c := range hist[:top] {
		sum += c
	}
	return sum / float64(len(g.Pix))
}

// Compute builds one valid Info per stored frame. Frames are processed in
// parallel; each call writes only its own slot.
func Compute(ctx context.Context, store *frame.Store, workers int, onProgress func(worker.Progress)) ([]frame.Info, error) {
	infos := frame.NewInfos(store.Len())
	err := worker.ForEach(ctx, store.Len(), workers, func(i int) error {
		f := store.At(i)
		g := imaging.ToGray(f)
		infos[i].Brightness = Brightness(f)
		infos[i].Sharpness = Sharpness(g)
		infos[i].Uniformity = Uniformity(g)
		return nil
	}, onProgress)
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// QualityParams configures FilterLowQuality.
type QualityParams struct {
	MaxRatio         float64
	DarkThreshold    float64
	BlurThreshold    float64
	UniformThreshold float64
}

// FilterReport counts frames newly flagged per criterion.
type FilterReport struct {
	Dark    int
	Blur    int
	Uniform int
}

// FilterLowQuality ranks frames independently by brightness (ascending),
// sharpness (ascending) and uniformity (descending). Within the first
// floor(n*MaxRatio) of each ranking, frames past the absolute threshold are
// invalidated.
func FilterLowQuality(infos []frame.Info, p QualityParams) FilterReport {
	var rep FilterReport
	limit := int(float64(len(infos)) * p.MaxRatio)
	if limit == 0 {
		return rep
	}

	byBrightness := rankBy(infos, func(i frame.Info) float64 { return i.Brightness })
	bySharpness := rankBy(infos, func(i frame.Info) float64 { return i.Sharpness })
	byUniformity := rankBy(infos, func(i frame.Info) float64 { return -i.Uniformity })

	for k := 0; k < limit; k++ {
		if f := &infos[byBrightness[k]]; f.Brightness < p.DarkThreshold {
			f.Invalidate(frame.FlagDark)
			rep.Dark++
		}
		if f := &infos[bySharpness[k]]; f.Sharpness < p.BlurThreshold {
			f.Invalidate(frame.FlagBlur)
			rep.Blur++
		}
		if f := &infos[byUniformity[k]]; f.Uniformity > p.UniformThreshold {
			f.Invalidate(frame.FlagUniform)
			rep.Uniform++
		}
	}
	return rep
}

// rankBy returns frame indices stably sorted ascending by key.
func rankBy(infos []frame.Info, key func(frame.Info) float64) []int {
	idx := make([]int, len(infos))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return key(infos[idx[a]]) < key(infos[idx[b]])
	})
	return idx
}
