// Package ffmpeg decodes video frames through an ffmpeg subprocess.
package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/ffprobe"
	"github.com/five82/hecate/internal/frame"
)

// DecodeOptions controls the decoded frame format.
type DecodeOptions struct {
	// Width downscales frames to this width; 0 keeps the source size.
	Width int
	// Tonemap converts HDR sources to SDR before RGB conversion.
	Tonemap bool
}

// Decoder reads raw RGB frames from an ffmpeg pipe. It implements frame.Decoder.
type Decoder struct {
	proc  *process
	meta  frame.VideoMetadata
	size  int
	count int
	ended bool
}

// NewDecoder starts decoding path. info must come from ffprobe.Probe.
func NewDecoder(ctx context.Context, path string, info *ffprobe.VideoInfo, opts DecodeOptions) (*Decoder, error) {
	w, h := ScaledSize(info.Width, info.Height, opts.Width)
	filter := NewVideoFilterChain().
		AddTonemap(opts.Tonemap && info.HDR.IsHDR).
		AddScale(scaleIfChanged(info, w, h)).
		Build()

	proc, err := startProcess(ctx, BuildDecodeArgs(path, filter))
	if err != nil {
		return nil, errors.NewVideoOpenError(path, err)
	}
	return &Decoder{
		proc: proc,
		meta: frame.VideoMetadata{Width: w, Height: h, FPS: info.FPS, FrameCount: info.Frames},
		size: w * h * 3,
	}, nil
}

func scaleIfChanged(info *ffprobe.VideoInfo, w, h int) (int, int) {
	if w == info.Width && h == info.Height {
		return 0, 0
	}
	return w, h
}

// Metadata returns the decoded frame size and the probed rate and count.
func (d *Decoder) Metadata() frame.VideoMetadata { return d.meta }

// Next returns the next frame, or io.EOF once ffmpeg exits cleanly.
func (d *Decoder) Next() (*frame.Frame, error) {
	if d.ended {
		return nil, io.EOF
	}
	f := frame.NewFrame(d.count, d.meta.Width, d.meta.Height)
	n, err := io.ReadFull(d.proc.stdout, f.Pix)
	switch {
	case err == nil:
		d.count++
		return f, nil
	case err == io.EOF:
		d.ended = true
		if werr := d.proc.wait(); werr != nil {
			return nil, werr
		}
		return nil, io.EOF
	default:
		d.ended = true
		if werr := d.proc.wait(); werr != nil {
			return nil, werr
		}
		return nil, errors.NewFFmpegError(fmt.Sprintf("truncated frame %d (%d of %d bytes)", d.count, n, d.size), err)
	}
}

// Close stops ffmpeg if it is still running.
func (d *Decoder) Close() error {
	if d.ended {
		return nil
	}
	d.ended = true
	return d.proc.kill()
}

// Decoded returns the number of frames read so far.
func (d *Decoder) Decoded() int { return d.count }

// ExtractFrames decodes the given source frame numbers at full resolution.
// Frames are returned in the order of indices; duplicates are allowed.
func ExtractFrames(ctx context.Context, path string, info *ffprobe.VideoInfo, indices []int, tonemap bool) ([]*frame.Frame, error) {
	if len(indices) == 0 {
		return nil, nil
	}
	unique := uniqueSorted(indices)
	filter := NewVideoFilterChain().
		AddSelect(unique).
		AddTonemap(tonemap && info.HDR.IsHDR).
		Build()

	proc, err := startProcess(ctx, BuildDecodeArgs(path, filter))
	if err != nil {
		return nil, errors.NewVideoOpenError(path, err)
	}
	dec := &Decoder{
		proc: proc,
		meta: frame.VideoMetadata{Width: info.Width, Height: info.Height, FPS: info.FPS},
		size: info.Width * info.Height * 3,
	}
	defer dec.Close()

	byIndex := make(map[int]*frame.Frame, len(unique))
	for _, n := range unique {
		f, err := dec.Next()
		if err == io.EOF {
			return nil, errors.NewFFmpegError(fmt.Sprintf("frame %d not found in %s, only %d selected frames decoded", n, path, dec.Decoded()), nil)
		}
		if err != nil {
			return nil, err
		}
		f.Index = n
		byIndex[n] = f
	}

	out := make([]*frame.Frame, len(indices))
	for i, n := range indices {
		out[i] = byIndex[n]
	}
	return out, nil
}

func uniqueSorted(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	k := 0
	for i, v := range out {
		if i == 0 || v != out[k-1] {
			out[k] = v
			k++
		}
	}
	return out[:k]
}
