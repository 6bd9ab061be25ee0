// Package shot turns per-frame validity into shots: overlong runs are split
// at high-motion frames, neighbours of rejected frames are dropped, and runs
// too short to be a shot are discarded.
package shot

import (
	"math"
	"sort"

	"github.com/five82/hecate/internal/frame"
)

// longRunFactor times the minimum shot length marks a run as overlong.
const longRunFactor = 3

// Report counts frames invalidated by segmentation.
type Report struct {
	Neighbors int
	GFL       int
	Short     int
}

// Heuristic picks up to njumps split positions in a run with per-frame
// stillness diff. Positions are visited from the highest diff down. Splitting
// at p drops frame p-1, so p is accepted only when every piece it leaves
// keeps more than minLen frames: p-1 > minLen, len(diff)-p > minLen and
// |p-q|-1 > minLen for every accepted q. Ties keep the later index first.
func Heuristic(diff []float64, njumps, minLen int) []int {
	idx := make([]int, len(diff))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return diff[idx[a]] < diff[idx[b]] })

	var jumps []int
	for k := len(idx) - 1; k >= 0 && len(jumps) < njumps; k-- {
		p := idx[k]
		if p-1 <= minLen || len(diff)-p <= minLen {
			continue
		}
		ok := true
		for _, q := range jumps {
			if abs(q-p)-1 <= minLen {
				ok = false
				break
			}
		}
		if ok {
			jumps = append(jumps, p)
		}
	}
	return jumps
}

// SplitLong cuts every valid run of at least 3*minLen frames. The frame
// preceding each accepted split position is invalidated with FlagGFL, and
// every piece of the run stays long enough to become a shot.
func SplitLong(infos []frame.Info, diff []float64, minLen int) int {
	cut := 0
	for _, run := range frame.ValidRuns(infos) {
		if run.Len() < longRunFactor*minLen {
			continue
		}
		njumps := run.Len() / minLen
		for _, j := range Heuristic(diff[run.Start:run.End+1], njumps, minLen) {
			infos[run.Start+j-1].Invalidate(frame.FlagGFL)
			cut++
		}
	}
	return cut
}

// DropNeighbors invalidates valid frames within window frames of a frame
// carrying one of frame.DefectFlags.
func DropNeighbors(infos []frame.Info, window int) int {
	if window <= 0 {
		return 0
	}
	var seeds []int
	for i := range infos {
		if infos[i].Flags&frame.DefectFlags != 0 {
			seeds = append(seeds, i)
		}
	}

	dropped := 0
	for _, s := range seeds {
		for i := max(s-window, 0); i <= min(s+window, len(infos)-1); i++ {
			if infos[i].Valid {
				infos[i].Invalidate(frame.FlagNeighbor)
				dropped++
			}
		}
	}
	return dropped
}

// WindowFrames converts a window in seconds to a frame count at fps.
func WindowFrames(seconds, fps float64) int {
	return int(math.Round(seconds * fps))
}

// Segment emits a shot for every valid run longer than minLen and
// invalidates shorter runs with FlagShort.
func Segment(infos []frame.Info, minLen int) ([]frame.ShotRange, int) {
	var shots []frame.ShotRange
	short := 0
	for _, run := range frame.ValidRuns(infos) {
		if run.Len() > minLen {
			shots = append(shots, frame.NewShotRange(run.Start, run.End))
			continue
		}
		for i := run.Start; i <= run.End; i++ {
			infos[i].Invalidate(frame.FlagShort)
			short++
		}
	}
	return shots, short
}

// Build runs the segmentation passes in order: neighbour drop, overlong
// run splitting on raw validity, then shot emission with the length filter.
func Build(infos []frame.Info, diff []float64, minLen, neighborWindow int) ([]frame.ShotRange, Report) {
	var rep Report
	rep.Neighbors = DropNeighbors(infos, neighborWindow)
	rep.GFL = SplitLong(infos, diff, minLen)
	shots, short := Segment(infos, minLen)
	rep.Short = short
	return shots, rep
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
