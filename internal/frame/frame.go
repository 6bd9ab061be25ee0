// Package frame holds the decoded frame sequence and the per-frame records
// that every pipeline stage reads and narrows.
package frame

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// VideoMetadata describes the analysed frame sequence.
type VideoMetadata struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// Duration returns FrameCount/FPS in seconds, 0 when FPS is unknown.
func (m VideoMetadata) Duration() float64 {
	if m.FPS <= 0 {
		return 0
	}
	return float64(m.FrameCount) / m.FPS
}

// Area returns the pixel count of one frame.
func (m VideoMetadata) Area() int {
	return m.Width * m.Height
}

// Frame is one decoded picture: row-major RGB, 3 bytes per pixel.
type Frame struct {
	Index  int
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a black frame.
func NewFrame(index, width, height int) *Frame {
	return &Frame{Index: index, Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

// RGB returns the pixel at (x, y).
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Decoder delivers frames one at a time. Next returns io.EOF after the last frame.
type Decoder interface {
	Metadata() VideoMetadata
	Next() (*Frame, error)
	Close() error
}

// Store owns the fully buffered frame sequence. Frames are read-only once loaded.
type Store struct {
	meta   VideoMetadata
	frames []*Frame
}

// NewStore wraps already decoded frames.
func NewStore(meta VideoMetadata, frames []*Frame) *Store {
	meta.FrameCount = len(frames)
	return &Store{meta: meta, frames: frames}
}

// Load drains dec into a Store, keeping every step-th frame and re-indexing
// the kept frames densely. FPS is divided by step.
func Load(ctx context.Context, dec Decoder, step int, progress func(decoded int)) (*Store, error) {
	if step < 1 {
		return nil, fmt.Errorf("frame step must be >= 1, got %d", step)
	}

	meta := dec.Metadata()
	var frames []*Frame
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", n, err)
		}
		if f.Width != meta.Width || f.Height != meta.Height {
			return nil, fmt.Errorf("frame %d is %dx%d, expected %dx%d", n, f.Width, f.Height, meta.Width, meta.Height)
		}
		if n%step != 0 {
			continue
		}

		f.Index = len(frames)
		frames = append(frames, f)
		if progress != nil {
			progress(n + 1)
		}
	}

	meta.FPS /= float64(step)
	return NewStore(meta, frames), nil
}

// Metadata returns the video metadata.
func (s *Store) Metadata() VideoMetadata { return s.meta }

// Len returns the number of frames.
func (s *Store) Len() int { return len(s.frames) }

// At returns frame i.
func (s *Store) At(i int) *Frame { return s.frames[i] }

// MemoryDecoder replays in-memory frames through the Decoder interface.
type MemoryDecoder struct {
	meta   VideoMetadata
	frames []*Frame
	pos    int
}

// NewMemoryDecoder creates a decoder over frames at the given fps.
func NewMemoryDecoder(fps float64, frames []*Frame) *MemoryDecoder {
	meta := VideoMetadata{FPS: fps, FrameCount: len(frames)}
	if len(frames) > 0 {
		meta.Width, meta.Height = frames[0].Width, frames[0].Height
	}
	return &MemoryDecoder{meta: meta, frames: frames}
}

func (d *MemoryDecoder) Metadata() VideoMetadata { return d.meta }

func (d *MemoryDecoder) Next() (*Frame, error) {
	if d.pos >= len(d.frames) {
		return nil, io.EOF
	}
	f := d.frames[d.pos]
	d.pos++
	return f, nil
}

func (d *MemoryDecoder) Close() error { return nil }
