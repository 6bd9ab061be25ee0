package frame

// Range is an inclusive frame interval with its representative frames.
type Range struct {
	Start           int
	End             int
	Representatives []int
}

// Len returns End-Start+1.
func (r Range) Len() int { return r.End - r.Start + 1 }

// Contains reports whether idx falls inside the range.
func (r Range) Contains(idx int) bool { return idx >= r.Start && idx <= r.End }

// ShotRange is a shot with its ordered sub-shots. Each sub-shot holds exactly
// one representative; Representatives concatenates them in temporal order.
type ShotRange struct {
	Range
	SubShots []Range
}

// NewShotRange creates a shot without sub-shots.
func NewShotRange(start, end int) ShotRange {
	return ShotRange{Range: Range{Start: start, End: end}}
}

// AddSubShot appends a closed sub-shot and its representative.
func (s *ShotRange) AddSubShot(start, end, representative int) {
	s.SubShots = append(s.SubShots, Range{Start: start, End: end, Representatives: []int{representative}})
	s.Representatives = append(s.Representatives, representative)
}

// LongestSubShot returns the index of the longest sub-shot, the earliest on
// ties, or -1 when the shot has none.
func (s *ShotRange) LongestSubShot() int {
	best, bestLen := -1, -1
	for i, sub := range s.SubShots {
		if sub.Len() > bestLen {
			best, bestLen = i, sub.Len()
		}
	}
	return best
}
