// Package selector picks the final thumbnail frames from the reduced shots.
package selector

import (
	"math"
	"sort"

	"github.com/five82/hecate/internal/cluster"
	"github.com/five82/hecate/internal/feature"
	"github.com/five82/hecate/internal/frame"
)

// Regime names the selection path taken.
type Regime int

const (
	// RegimeNone means there were no frames at all.
	RegimeNone Regime = iota
	// RegimeFallback picks the best scoring frame of the whole video.
	RegimeFallback
	// RegimeShots returns each shot's longest sub-shot representative.
	RegimeShots
	// RegimeClustered clusters the representatives and picks one per cluster.
	RegimeClustered
)

func (r Regime) String() string {
	switch r {
	case RegimeFallback:
		return "fallback"
	case RegimeShots:
		return "shots"
	case RegimeClustered:
		return "clustered"
	default:
		return "none"
	}
}

// Params configures Select.
type Params struct {
	// Count is the requested number of thumbnails.
	Count int
	// Clusters is K for the clustered regime.
	Clusters   int
	ChatWeight float64
	Cluster    cluster.Params
}

// Result is the ordered selection.
type Result struct {
	Frames     []int
	Regime     Regime
	Candidates int
}

// Scorer combines stillness and engagement; lower is better.
type Scorer struct {
	Diff       []float64
	Engagement []float64
	ChatWeight float64
}

// Score returns diff[i] + weight*(1-engagement[i]). A nil engagement
// slice counts as zero engagement.
func (s Scorer) Score(i int) float64 {
	e := 0.0
	if s.Engagement != nil {
		e = s.Engagement[i]
	}
	return s.Diff[i] + s.ChatWeight*(1-e)
}

// argmin returns the lowest scoring index of candidates, earliest on ties.
func (s Scorer) argmin(candidates []int) int {
	best, bestScore := -1, math.Inf(1)
	for _, i := range candidates {
		if v := s.Score(i); v < bestScore {
			best, bestScore = i, v
		}
	}
	return best
}

type candidate struct {
	frame  int
	length int
}

// Select chooses up to p.Count frames. V, the number of surviving
// sub-shot representatives, picks the regime.
func Select(shots []frame.ShotRange, desc *feature.Descriptors, diff, engagement []float64, p Params) (Result, error) {
	sc := Scorer{Diff: diff, Engagement: engagement, ChatWeight: p.ChatWeight}

	var reps []candidate
	for _, s := range shots {
		for _, sub := range s.SubShots {
			reps = append(reps, candidate{frame: sub.Representatives[0], length: sub.Len()})
		}
	}
	res := Result{Candidates: len(reps)}

	switch {
	case len(reps) == 0:
		if len(diff) == 0 {
			return res, nil
		}
		all := make([]int, len(diff))
		for i := range all {
			all[i] = i
		}
		res.Regime = RegimeFallback
		res.Frames = []int{sc.argmin(all)}
		return res, nil

	case len(reps) <= p.Count:
		res.Regime = RegimeShots
		res.Frames = longestPerShot(shots)
		return res, nil
	}

	frames, err := clustered(reps, desc, sc, p)
	if err != nil {
		return res, err
	}
	res.Regime = RegimeClustered
	res.Frames = frames
	return res, nil
}

// longestPerShot returns every shot's longest sub-shot representative,
// longest first. Equal lengths keep shot order.
func longestPerShot(shots []frame.ShotRange) []int {
	var picks []candidate
	for i := range shots {
		j := shots[i].LongestSubShot()
		if j < 0 {
			continue
		}
		sub := shots[i].SubShots[j]
		picks = append(picks, candidate{frame: sub.Representatives[0], length: sub.Len()})
	}
	sort.SliceStable(picks, func(a, b int) bool { return picks[a].length > picks[b].length })

	out := make([]int, len(picks))
	for i, c := range picks {
		out[i] = c.frame
	}
	return out
}

// clustered groups the representatives by descriptor, ranks clusters by the
// summed length of their sub-shots and takes the best scoring member of each.
func clustered(reps []candidate, desc *feature.Descriptors, sc Scorer, p Params) ([]int, error) {
	idx := make([]int, len(reps))
	for i, c := range reps {
		idx[i] = c.frame
	}
	km, err := cluster.KMeans(desc.Rows(idx), p.Clusters, p.Cluster)
	if err != nil {
		return nil, err
	}

	members := make([][]int, km.K)
	weight := make([]int, km.K)
	for i, c := range reps {
		l := km.Labels[i]
		members[l] = append(members[l], c.frame)
		weight[l] += c.length
	}

	order := make([]int, km.K)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return weight[order[a]] > weight[order[b]] })

	limit := min(km.K, p.Count)
	out := make([]int, 0, limit)
	for _, l := range order {
		if len(out) == limit {
			break
		}
		if len(members[l]) == 0 {
			continue
		}
		out = append(out, sc.argmin(members[l]))
	}
	return out, nil
}
