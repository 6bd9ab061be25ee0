// Package subshot reduces every shot to one representative frame per run
// of visually similar frames.
package subshot

import (
	"github.com/five82/hecate/internal/cluster"
	"github.com/five82/hecate/internal/feature"
	"github.com/five82/hecate/internal/frame"
)

// Report summarises a reduction.
type Report struct {
	Clusters  int
	SubShots  int
	Redundant int
}

// VideoClusterCount returns clamp(valid/2, 1, shots).
func VideoClusterCount(valid, shots int) int {
	return max(1, min(valid/2, shots))
}

// Reduce clusters the descriptors of all valid frames video-wide and splits
// each shot wherever the label changes. Each sub-shot keeps its frame with
// the lowest diff (earliest on ties); the others are flagged REDUNDANT.
// Sub-shots are appended to the shots in place.
func Reduce(shots []frame.ShotRange, infos []frame.Info, desc *feature.Descriptors, diff []float64, p cluster.Params) (Report, error) {
	var rep Report

	var idx []int
	for i := range infos {
		if infos[i].Valid {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 || len(shots) == 0 {
		return rep, nil
	}

	res, err := cluster.KMeans(desc.Rows(idx), VideoClusterCount(len(idx), len(shots)), p)
	if err != nil {
		return rep, err
	}
	rep.Clusters = res.K

	labels := make(map[int]int, len(idx))
	for k, i := range idx {
		labels[i] = res.Labels[k]
	}

	for s := range shots {
		shot := &shots[s]
		start := shot.Start
		for i := shot.Start; i <= shot.End; i++ {
			if i < shot.End && labels[i+1] == labels[start] {
				continue
			}
			rep.Redundant += closeSubShot(shot, infos, diff, start, i)
			rep.SubShots++
			start = i + 1
		}
	}
	return rep, nil
}

// closeSubShot keeps the stillest frame of [start, end] and returns the
// number of frames flagged redundant.
func closeSubShot(shot *frame.ShotRange, infos []frame.Info, diff []float64, start, end int) int {
	rep := start
	for i := start + 1; i <= end; i++ {
		if diff[i] < diff[rep] {
			rep = i
		}
	}

	n := 0
	for i := start; i <= end; i++ {
		if i != rep {
			infos[i].Invalidate(frame.FlagRedundant)
			n++
		}
	}
	shot.AddSubShot(start, end, rep)
	return n
}

// Representatives lists every sub-shot representative in shot order.
func Representatives(shots []frame.ShotRange) []int {
	var out []int
	for _, s := range shots {
		out = append(out, s.Representatives...)
	}
	return out
}
