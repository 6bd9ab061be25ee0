package frame

import "strings"

// Flag is a reason a frame was rejected.
type Flag uint16

const (
	FlagDark Flag = 1 << iota
	FlagBlur
	FlagUniform
	FlagCut
	FlagECR
	FlagNeighbor
	FlagGFL
	FlagShort
	FlagRedundant
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagDark, "DARK"},
	{FlagBlur, "BLUR"},
	{FlagUniform, "UNIFORM"},
	{FlagCut, "CUT"},
	{FlagECR, "ECR"},
	{FlagNeighbor, "NEIGHBOR"},
	{FlagGFL, "[GFL]"},
	{FlagShort, "SHORT"},
	{FlagRedundant, "[Redundant]"},
}

// Has reports whether all bits of other are set.
func (f Flag) Has(other Flag) bool { return f&other == other }

// String renders the set flags in declaration order, space separated.
func (f Flag) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, " ")
}

// DefectFlags mark frames whose neighbours are dropped with them. ECR
// rejections only mark the stillest frames and are left out.
const DefectFlags = FlagDark | FlagBlur | FlagUniform | FlagCut

// Info is the mutable per-frame record. Valid only ever goes from true to false.
type Info struct {
	ID         int
	Brightness float64
	Sharpness  float64
	Uniformity float64
	Valid      bool
	Flags      Flag
}

// Invalidate marks the frame invalid and records why. Flags accumulate.
func (i *Info) Invalidate(reason Flag) {
	i.Valid = false
	i.Flags |= reason
}

// NewInfos creates n valid records with stable ids.
func NewInfos(n int) []Info {
	infos := make([]Info, n)
	for i := range infos {
		infos[i] = Info{ID: i, Valid: true}
	}
	return infos
}

// CountValid returns the number of valid records.
func CountValid(infos []Info) int {
	n := 0
	for i := range infos {
		if infos[i].Valid {
			n++
		}
	}
	return n
}

// CountFlag returns the number of records carrying flag.
func CountFlag(infos []Info, flag Flag) int {
	n := 0
	for i := range infos {
		if infos[i].Flags.Has(flag) {
			n++
		}
	}
	return n
}

// Run is a maximal span of consecutive valid frames.
type Run struct {
	Start, End int
}

// Len returns the inclusive length of the run.
func (r Run) Len() int { return r.End - r.Start + 1 }

// ValidRuns returns the maximal runs of valid frames in order.
func ValidRuns(infos []Info) []Run {
	var runs []Run
	start := -1
	for i := range infos {
		if infos[i].Valid {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Start: start, End: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(infos) - 1})
	}
	return runs
}
