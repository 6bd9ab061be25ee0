// Package analysis serialises the per-frame signals and decisions of a run
// to a msgpack file for offline inspection.
package analysis

import (
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/frame"
)

// FileName is the dump file written into the thumbnail directory.
const FileName = "analysis.msgpack"

// FormatVersion is bumped on incompatible layout changes.
const FormatVersion = 1

// Dump is the root document.
type Dump struct {
	Version   int       `msgpack:"version"`
	RunID     string    `msgpack:"run_id"`
	Video     string    `msgpack:"video"`
	CreatedAt time.Time `msgpack:"created_at"`
	Meta      Meta      `msgpack:"meta"`

	Frames     []FrameRecord `msgpack:"frames"`
	Diff       []float64     `msgpack:"diff"`
	ECR        []float64     `msgpack:"ecr"`
	Engagement []float64     `msgpack:"engagement,omitempty"`

	Shots     []ShotRecord `msgpack:"shots"`
	Regime    string       `msgpack:"regime"`
	Selection []int        `msgpack:"selection"`
}

// Meta mirrors frame.VideoMetadata.
type Meta struct {
	Width      int     `msgpack:"width"`
	Height     int     `msgpack:"height"`
	FPS        float64 `msgpack:"fps"`
	FrameCount int     `msgpack:"frame_count"`
	FrameStep  int     `msgpack:"frame_step"`
}

// FrameRecord is one frame.Info with its flags rendered as text.
type FrameRecord struct {
	ID         int     `msgpack:"id"`
	Brightness float64 `msgpack:"brightness"`
	Sharpness  float64 `msgpack:"sharpness"`
	Uniformity float64 `msgpack:"uniformity"`
	Valid      bool    `msgpack:"valid"`
	Flags      string  `msgpack:"flags,omitempty"`
}

// ShotRecord is one shot and its sub-shots.
type ShotRecord struct {
	Start    int             `msgpack:"start"`
	End      int             `msgpack:"end"`
	SubShots []SubShotRecord `msgpack:"sub_shots"`
}

// SubShotRecord is one sub-shot and its representative.
type SubShotRecord struct {
	Start          int `msgpack:"start"`
	End            int `msgpack:"end"`
	Representative int `msgpack:"representative"`
}

// Input gathers the run artifacts that make up a dump.
type Input struct {
	RunID      string
	Video      string
	Meta       frame.VideoMetadata
	FrameStep  int
	Infos      []frame.Info
	Diff       []float64
	ECR        []float64
	Engagement []float64
	Shots      []frame.ShotRange
	Regime     string
	Selection  []int
}

// Build converts run artifacts into a Dump.
func Build(in Input) *Dump {
	d := &Dump{
		Version:   FormatVersion,
		RunID:     in.RunID,
		Video:     in.Video,
		CreatedAt: time.Now().UTC(),
		Meta: Meta{
			Width:      in.Meta.Width,
			Height:     in.Meta.Height,
			FPS:        in.Meta.FPS,
			FrameCount: in.Meta.FrameCount,
			FrameStep:  in.FrameStep,
		},
		Diff:       in.Diff,
		ECR:        in.ECR,
		Engagement: in.Engagement,
		Regime:     in.Regime,
		Selection:  in.Selection,
	}

	d.Frames = make([]FrameRecord, len(in.Infos))
	for i, info := range in.Infos {
		d.Frames[i] = FrameRecord{
			ID:         info.ID,
			Brightness: info.Brightness,
			Sharpness:  info.Sharpness,
			Uniformity: info.Uniformity,
			Valid:      info.Valid,
			Flags:      info.Flags.String(),
		}
	}

	d.Shots = make([]ShotRecord, len(in.Shots))
	for i, s := range in.Shots {
		rec := ShotRecord{Start: s.Start, End: s.End}
		for _, sub := range s.SubShots {
			rec.SubShots = append(rec.SubShots, SubShotRecord{Start: sub.Start, End: sub.End, Representative: sub.Representatives[0]})
		}
		d.Shots[i] = rec
	}
	return d
}

// Write encodes d to path.
func Write(path string, d *Dump) error {
	data, err := msgpack.Marshal(d)
	if err != nil {
		return errors.NewOutputError("failed to encode analysis dump", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewOutputError("failed to write "+path, err)
	}
	return nil
}

// Read decodes a dump written by Write.
func Read(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("failed to read "+path, err)
	}
	var d Dump
	if err := msgpack.Unmarshal(data, &d); err != nil {
		return nil, errors.NewAnalysisError("failed to decode analysis dump "+path, err)
	}
	return &d, nil
}
