// Package transition computes the stillness and edge change ratio signals
// and rejects frames that sit on visual transitions.
package transition

import (
	"context"
	"math"
	"sort"

	"github.com/five82/hecate/internal/frame"
	"github.com/five82/hecate/internal/imaging"
	"github.com/five82/hecate/internal/worker"
)

const (
	// DilationRadius is the arm length of the cross used to dilate edge maps.
	DilationRadius = 5

	// highThresholdScale sets the Canny high threshold relative to Otsu's.
	highThresholdScale = 1.2

	// edgeEpsilon floors edge pixel counts in ratio denominators.
	edgeEpsilon = 1e-6
)

// Diff returns the stillness signal: the mean of the L2 norms of the
// backward and forward frame differences, divided by the frame area.
// The first and last entries are 0.
func Diff(ctx context.Context, store *frame.Store, workers int) ([]float64, error) {
	n := store.Len()
	diff := make([]float64, n)
	if n < 3 {
		return diff, nil
	}

	// step[i] = ||f[i] - f[i-1]||
	step := make([]float64, n)
	err := worker.ForEach(ctx, n-1, workers, func(k int) error {
		step[k+1] = distance(store.At(k), store.At(k+1))
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	area := float64(store.Metadata().Area())
	for i := 1; i < n-1; i++ {
		diff[i] = (step[i] + step[i+1]) / (2 * area)
	}
	return diff, nil
}

// distance is the L2 norm of the per-channel absolute difference of a and b.
func distance(a, b *frame.Frame) float64 {
	var sum float64
	for i, av := range a.Pix {
		d := float64(av) - float64(b.Pix[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// edgeMaps holds a frame's Canny edges and their dilation.
type edgeMaps struct {
	edges   *imaging.Mask
	dilated *imaging.Mask
}

// Edges computes the Otsu-thresholded Canny edge map of f and its cross dilation.
func Edges(f *frame.Frame) (edges, dilated *imaging.Mask) {
	g := imaging.ToGray(f)
	theta := imaging.Otsu(g)
	edges = imaging.Canny(g, theta, highThresholdScale*theta)
	return edges, edges.DilateCross(DilationRadius)
}

// ECR returns the edge change ratio of every frame against its predecessor.
// Frame 0 is compared with itself.
func ECR(ctx context.Context, store *frame.Store, workers int, onProgress func(worker.Progress)) ([]float64, error) {
	n := store.Len()
	maps := make([]edgeMaps, n)
	err := worker.ForEach(ctx, n, workers, func(i int) error {
		e, d := Edges(store.At(i))
		maps[i] = edgeMaps{edges: e, dilated: d}
		return nil
	}, onProgress)
	if err != nil {
		return nil, err
	}

	ecr := make([]float64, n)
	for i := 0; i < n; i++ {
		prev := maps[max(i-1, 0)]
		ecr[i] = Ratio(prev.edges, prev.dilated, maps[i].edges, maps[i].dilated)
	}
	return ecr, nil
}

// Ratio is max(rho_out, rho_in) for a pair of consecutive edge maps.
// rho_out measures previous edges with no nearby current edge, rho_in the reverse.
func Ratio(prevEdges, prevDilated, curEdges, curDilated *imaging.Mask) float64 {
	prevCount := math.Max(edgeEpsilon, float64(prevEdges.Count()))
	curCount := math.Max(edgeEpsilon, float64(curEdges.Count()))

	rhoOut := 1 - float64(prevEdges.IntersectCount(curDilated))/prevCount
	rhoIn := 1 - float64(prevDilated.IntersectCount(curEdges))/curCount
	return math.Max(rhoOut, rhoIn)
}

// Params configures Filter.
type Params struct {
	MaxRatio     float64
	CutThreshold float64
	ECRThreshold float64
}

// Report counts frames newly flagged per signal.
type Report struct {
	Cuts int
	ECR  int
}

// Filter takes the floor(n*MaxRatio) frames with the highest diff and flags
// those with diff >= CutThreshold as CUT, then takes the same number of
// frames with the lowest ecr and flags those with ecr >= ECRThreshold as ECR.
func Filter(infos []frame.Info, diff, ecr []float64, p Params) Report {
	var rep Report
	limit := int(float64(len(infos)) * p.MaxRatio)
	if limit == 0 {
		return rep
	}

	byDiff := rank(len(infos), func(i int) float64 { return -diff[i] })
	for _, i := range byDiff[:limit] {
		if diff[i] >= p.CutThreshold {
			infos[i].Invalidate(frame.FlagCut)
			rep.Cuts++
		}
	}

	byECR := rank(len(infos), func(i int) float64 { return ecr[i] })
	for _, i := range byECR[:limit] {
		if ecr[i] >= p.ECRThreshold {
			infos[i].Invalidate(frame.FlagECR)
			rep.ECR++
		}
	}
	return rep
}

// rank returns [0, n) stably sorted ascending by key.
func rank(n int, key func(int) float64) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return key(idx[a]) < key(idx[b]) })
	return idx
}
