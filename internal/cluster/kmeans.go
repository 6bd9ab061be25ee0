// Package cluster implements k-means with k-means++ seeding over dense
// descriptor rows.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrNoData is returned when there is nothing to cluster.
var ErrNoData = errors.New("no data to cluster")

// Params controls the search.
type Params struct {
	Attempts      int
	MaxIterations int
	Epsilon       float64
	Seed          int64
}

// Result is the best labelling found over all attempts.
type Result struct {
	Labels      []int
	Centers     [][]float64
	K           int
	Compactness float64
	Iterations  int
}

// KMeans partitions data into min(k, len(data)) clusters. A single point
// forms cluster 0 with itself as center. Each attempt seeds with k-means++
// and runs Lloyd iterations until no center moves more than Epsilon or
// MaxIterations is reached; the attempt with the lowest compactness wins.
func KMeans(data [][]float64, k int, p Params) (*Result, error) {
	n := len(data)
	if n == 0 {
		return nil, ErrNoData
	}
	if k < 1 {
		return nil, fmt.Errorf("cluster count must be >= 1, got %d", k)
	}
	if n == 1 {
		return &Result{
			Labels:  []int{0},
			Centers: [][]float64{append([]float64(nil), data[0]...)},
			K:       1,
		}, nil
	}

	k = min(k, n)
	attempts := max(p.Attempts, 1)
	maxIter := max(p.MaxIterations, 1)
	rng := rand.New(rand.NewSource(p.Seed))

	var best *Result
	for a := 0; a < attempts; a++ {
		r := lloyd(data, seedPlusPlus(data, k, rng), maxIter, p.Epsilon*p.Epsilon)
		if best == nil || r.Compactness < best.Compactness {
			best = r
		}
	}
	return best, nil
}

// seedPlusPlus picks k initial centers: the first uniformly, the rest with
// probability proportional to the squared distance to the nearest chosen one.
func seedPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(data[rng.Intn(n)]))

	dist := make([]float64, n)
	for i := range data {
		dist[i] = sqDist(data[i], centers[0])
	}
	cum := make([]float64, n)

	for len(centers) < k {
		floats.CumSum(cum, dist)
		total := cum[n-1]

		var pick int
		if total <= 0 {
			pick = rng.Intn(n)
		} else {
			pick = sort.SearchFloat64s(cum, rng.Float64()*total)
			// Skip zero-weight points that share a cumulative value.
			for pick < n-1 && dist[pick] == 0 {
				pick++
			}
		}

		c := clone(data[pick])
		centers = append(centers, c)
		for i := range data {
			dist[i] = math.Min(dist[i], sqDist(data[i], c))
		}
	}
	return centers
}

// lloyd refines centers in place and labels every point with its nearest center.
func lloyd(data [][]float64, centers [][]float64, maxIter int, eps2 float64) *Result {
	k := len(centers)
	dim := len(data[0])
	labels := make([]int, len(data))
	counts := make([]int, k)

	iter := 0
	for iter < maxIter {
		iter++
		assign(data, centers, labels)

		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, dim)
			counts[c] = 0
		}
		for i, x := range data {
			floats.Add(next[labels[i]], x)
			counts[labels[i]]++
		}
		for c := range next {
			if counts[c] == 0 {
				next[c] = clone(data[farthest(data, centers, labels)])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		shift := 0.0
		for c := range centers {
			shift = math.Max(shift, sqDist(centers[c], next[c]))
		}
		centers = next
		if shift <= eps2 {
			break
		}
	}

	compactness := assign(data, centers, labels)
	return &Result{Labels: labels, Centers: centers, K: k, Compactness: compactness, Iterations: iter}
}

// assign labels each point with its nearest center, lowest index on ties,
// and returns the summed squared distance.
func assign(data, centers [][]float64, labels []int) float64 {
	var total float64
	for i, x := range data {
		bestC, bestD := 0, math.Inf(1)
		for c, ctr := range centers {
			if d := sqDist(x, ctr); d < bestD {
				bestC, bestD = c, d
			}
		}
		labels[i] = bestC
		total += bestD
	}
	return total
}

// farthest returns the point furthest from its assigned center.
func farthest(data, centers [][]float64, labels []int) int {
	best, bestD := 0, -1.0
	for i, x := range data {
		if d := sqDist(x, centers[labels[i]]); d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
