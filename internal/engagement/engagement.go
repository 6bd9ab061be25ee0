// Package engagement turns timestamped viewer comments into a per-frame
// engagement score in [0, 1].
package engagement

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/frame"
)

// Comment is one pre-normalized viewer comment. Only Time is used.
type Comment struct {
	Text     string  `json:"text"`
	Time     float64 `json:"time"`
	SendTime int64   `json:"send_time"`
}

// LoadComments reads a JSON array of comments.
func LoadComments(path string) ([]Comment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCommentsError(path, err)
	}
	var comments []Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, errors.NewCommentsError(path, fmt.Errorf("parse: %w", err))
	}
	return comments, nil
}

// Window is a time span in seconds relative to a comment.
type Window struct {
	Lo float64
	Hi float64
}

// Kernel is a discrete density over frame offsets Offset..Offset+len(Taps)-1.
type Kernel struct {
	Offset int
	Taps   []float64
}

// NewKernel samples a Gaussian centred on the window midpoint with sigma a
// sixth of the window width, normalized to unit mass.
func NewKernel(w Window, fps float64) Kernel {
	lo := int(math.Round(w.Lo * fps))
	hi := int(math.Round(w.Hi * fps))
	if hi < lo {
		lo, hi = hi, lo
	}
	center := (w.Lo + w.Hi) / 2 * fps
	sigma := (w.Hi - w.Lo) / 6 * fps

	taps := make([]float64, hi-lo+1)
	for k := range taps {
		if sigma <= 0 {
			taps[k] = 1
			continue
		}
		z := (float64(lo+k) - center) / sigma
		taps[k] = math.Exp(-0.5 * z * z)
	}
	if sum := floats.Sum(taps); sum > 0 {
		floats.Scale(1/sum, taps)
	}
	return Kernel{Offset: lo, Taps: taps}
}

// splat adds the kernel centred at frame f into acc. Taps falling outside
// acc are dropped and the rest rescaled so the added mass stays 1.
func (k Kernel) splat(acc []float64, f int) {
	first := max(0, -(f + k.Offset))
	last := min(len(k.Taps), len(acc)-(f+k.Offset))
	if first >= last {
		return
	}
	scale := 1.0
	if first > 0 || last < len(k.Taps) {
		inRange := floats.Sum(k.Taps[first:last])
		if inRange <= 0 {
			return
		}
		scale = 1 / inRange
	}
	base := f + k.Offset
	for t := first; t < last; t++ {
		acc[base+t] += k.Taps[t] * scale
	}
}

// Score returns one value per frame, normalized so the maximum is 1. With no
// comments or no frames every score is 0.
func Score(meta frame.VideoMetadata, comments []Comment, w Window) []float64 {
	scores := make([]float64, meta.FrameCount)
	if meta.FrameCount == 0 || len(comments) == 0 || meta.FPS <= 0 {
		return scores
	}

	k := NewKernel(w, meta.FPS)
	for _, c := range comments {
		f := int(math.Round(c.Time * meta.FPS))
		f = max(0, min(f, meta.FrameCount-1))
		k.splat(scores, f)
	}

	if peak := floats.Max(scores); peak > 0 {
		for i := range scores {
			scores[i] /= peak
		}
	}
	return scores
}
