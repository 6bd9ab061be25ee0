package validation

import (
	"fmt"
	"strings"

	"github.com/five82/hecate/internal/frame"
)

// expectedFormat is the image format thumbnails are written in.
const expectedFormat = "jpeg"

// Input contains the artifacts of one extraction run.
type Input struct {
	Infos      []frame.Info
	Shots      []frame.ShotRange
	MinShotLen int

	Selection  []int
	Requested  int
	Candidates int

	Thumbnails []string
	// ThumbnailWidth is the expected thumbnail width, 0 to skip the check.
	ThumbnailWidth int
}

// ValidateRun checks the run artifacts, inspecting thumbnails with the
// DefaultAnalyzer.
func ValidateRun(in Input) *Result {
	return ValidateWithAnalyzer(NewDefaultAnalyzer(), in)
}

// ValidateWithAnalyzer checks the run artifacts using an ImageAnalyzer.
// This allows for testing without real image files.
func ValidateWithAnalyzer(analyzer ImageAnalyzer, in Input) *Result {
	result := &Result{}
	result.AreShotsLongEnough, result.ShotMessage = validateShotLengths(in.Shots, in.MinShotLen)
	result.AreShotsClean, result.CleanMessage = validateShotFrames(in.Shots, in.Infos)
	result.AreSubShotsCovering, result.SubShotMessage = validateSubShots(in.Shots, in.Infos)
	result.IsSelectionBounded, result.SelectionMessage = validateSelectionSize(in.Selection, in.Requested)
	result.IsSelectionUnique, result.UniqueMessage = validateSelectionFrames(in.Selection, len(in.Infos))
	result.IsSingleCandidateKept, result.CandidateMessage = validateSingleCandidate(in.Selection, in.Candidates)
	result.AreThumbnailsWritten, result.ThumbnailMessage = validateThumbnails(analyzer, in.Thumbnails, len(in.Selection), in.ThumbnailWidth)
	return result
}

// validateShotLengths checks that every shot is longer than minLen.
func validateShotLengths(shots []frame.ShotRange, minLen int) (bool, string) {
	for _, s := range shots {
		if s.Len() <= minLen {
			return false, fmt.Sprintf("Shot [%d, %d] has %d frames, need more than %d", s.Start, s.End, s.Len(), minLen)
		}
	}
	return true, fmt.Sprintf("%d shots longer than %d frames", len(shots), minLen)
}

// validateShotFrames checks that shots are ordered, disjoint and contain no
// frame rejected for a reason other than redundancy.
func validateShotFrames(shots []frame.ShotRange, infos []frame.Info) (bool, string) {
	prevEnd := -1
	for _, s := range shots {
		if s.Start <= prevEnd || s.End < s.Start || s.End >= len(infos) {
			return false, fmt.Sprintf("Shot [%d, %d] overlaps or is out of range", s.Start, s.End)
		}
		for i := s.Start; i <= s.End; i++ {
			if rejected := infos[i].Flags &^ frame.FlagRedundant; rejected != 0 {
				return false, fmt.Sprintf("Frame %d inside shot [%d, %d] is flagged %s", i, s.Start, s.End, rejected)
			}
		}
		prevEnd = s.End
	}
	return true, "Shots are disjoint and hold only accepted frames"
}

// validateSubShots checks that each shot is partitioned by its sub-shots and
// that every representative lies in its sub-shot and is still valid.
func validateSubShots(shots []frame.ShotRange, infos []frame.Info) (bool, string) {
	total := 0
	for _, s := range shots {
		if len(s.SubShots) == 0 {
			return false, fmt.Sprintf("Shot [%d, %d] has no sub-shots", s.Start, s.End)
		}
		next := s.Start
		for _, sub := range s.SubShots {
			if sub.Start != next || sub.End < sub.Start {
				return false, fmt.Sprintf("Sub-shot [%d, %d] breaks coverage of shot [%d, %d]", sub.Start, sub.End, s.Start, s.End)
			}
			if len(sub.Representatives) != 1 {
				return false, fmt.Sprintf("Sub-shot [%d, %d] has %d representatives", sub.Start, sub.End, len(sub.Representatives))
			}
			rep := sub.Representatives[0]
			if !sub.Contains(rep) || !infos[rep].Valid {
				return false, fmt.Sprintf("Representative %d of sub-shot [%d, %d] is outside or invalid", rep, sub.Start, sub.End)
			}
			next = sub.End + 1
		}
		if next != s.End+1 {
			return false, fmt.Sprintf("Sub-shots of shot [%d, %d] stop at frame %d", s.Start, s.End, next-1)
		}
		total += len(s.SubShots)
	}
	return true, fmt.Sprintf("%d sub-shots cover %d shots", total, len(shots))
}

// validateSelectionSize checks the selection never exceeds the request.
func validateSelectionSize(selection []int, requested int) (bool, string) {
	if len(selection) > requested {
		return false, fmt.Sprintf("Selected %d frames, requested at most %d", len(selection), requested)
	}
	return true, fmt.Sprintf("Selected %d of %d requested", len(selection), requested)
}

// validateSelectionFrames checks selected frames are distinct and in range.
func validateSelectionFrames(selection []int, frames int) (bool, string) {
	seen := make(map[int]bool, len(selection))
	for _, f := range selection {
		if f < 0 || f >= frames {
			return false, fmt.Sprintf("Frame %d is outside [0, %d)", f, frames)
		}
		if seen[f] {
			return false, fmt.Sprintf("Frame %d selected twice", f)
		}
		seen[f] = true
	}
	return true, "Selected frames are distinct"
}

// validateSingleCandidate checks that one candidate yields one thumbnail.
func validateSingleCandidate(selection []int, candidates int) (bool, string) {
	if candidates != 1 {
		return true, fmt.Sprintf("%d candidates", candidates)
	}
	if len(selection) != 1 {
		return false, fmt.Sprintf("One candidate produced %d thumbnails", len(selection))
	}
	return true, "Single candidate kept"
}

// validateThumbnails checks one decodable JPEG was written per selected frame.
func validateThumbnails(analyzer ImageAnalyzer, paths []string, want, width int) (bool, string) {
	if len(paths) != want {
		return false, fmt.Sprintf("Wrote %d thumbnails for %d frames", len(paths), want)
	}

	var problems []string
	for _, p := range paths {
		props, err := analyzer.GetImageProperties(p)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if props.Format != expectedFormat {
			problems = append(problems, fmt.Sprintf("%s is %s, expected %s", p, props.Format, expectedFormat))
		}
		if width > 0 && props.Width != width {
			problems = append(problems, fmt.Sprintf("%s is %d wide, expected %d", p, props.Width, width))
		}
	}
	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	return true, fmt.Sprintf("%d JPEG files", len(paths))
}
