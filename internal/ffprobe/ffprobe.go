// Package ffprobe provides functions for extracting video information using ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/five82/hecate/internal/errors"
)

// VideoInfo contains the properties of the first video stream.
type VideoInfo struct {
	Width     int
	Height    int
	FPS       float64
	Frames    int
	Duration  float64
	CodecName string
	HDR       HDRInfo
}

// HDRInfo contains HDR-related information.
type HDRInfo struct {
	IsHDR                   bool
	ColourPrimaries         string
	TransferCharacteristics string
	MatrixCoefficients      string
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType      string `json:"codec_type"`
	CodecName      string `json:"codec_name"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	RFrameRate     string `json:"r_frame_rate"`
	AvgFrameRate   string `json:"avg_frame_rate"`
	NbFrames       string `json:"nb_frames"`
	Duration       string `json:"duration"`
	ColorPrimaries string `json:"color_primaries"`
	ColorTransfer  string `json:"color_transfer"`
	ColorSpace     string `json:"color_space"`
}

// runFFprobe executes ffprobe and returns the parsed output.
func runFFprobe(ctx context.Context, inputPath string) (*ffprobeOutput, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "v:0",
		inputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError()
		}
		return nil, errors.NewVideoOpenError(inputPath, errors.WrapExecError("ffprobe", err, stderr.String()))
	}
	return parseFFprobeOutput(output)
}

// parseFFprobeOutput decodes ffprobe's JSON document.
func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewJSONParseError("ffprobe output", err)
	}
	return &result, nil
}

// Probe returns the properties of the first video stream of a file.
func Probe(ctx context.Context, inputPath string) (*VideoInfo, error) {
	probe, err := runFFprobe(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	info, err := extractVideoInfo(probe)
	if err != nil {
		return nil, errors.NewVideoOpenError(inputPath, err)
	}
	return info, nil
}

// extractVideoInfo picks the first video stream and resolves its frame
// rate and frame count. nb_frames is preferred; otherwise the count is
// estimated from the stream or container duration.
func extractVideoInfo(probe *ffprobeOutput) (*VideoInfo, error) {
	var stream *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			stream = &probe.Streams[i]
			break
		}
	}
	if stream == nil {
		return nil, errors.NewVideoInfoError("no video stream found")
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, errors.NewVideoInfoError(fmt.Sprintf("invalid dimensions %dx%d", stream.Width, stream.Height))
	}

	fps, err := ParseFrameRate(stream.RFrameRate)
	if err != nil {
		if fps, err = ParseFrameRate(stream.AvgFrameRate); err != nil {
			return nil, errors.NewVideoInfoError("no usable frame rate")
		}
	}

	duration := parseFloat(stream.Duration)
	if duration == 0 {
		duration = parseFloat(probe.Format.Duration)
	}

	frames := 0
	if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
		frames = n
	} else if duration > 0 {
		frames = int(math.Round(duration * fps))
	}

	return &VideoInfo{
		Width:     stream.Width,
		Height:    stream.Height,
		FPS:       fps,
		Frames:    frames,
		Duration:  duration,
		CodecName: stream.CodecName,
		HDR: HDRInfo{
			ColourPrimaries:         stream.ColorPrimaries,
			TransferCharacteristics: stream.ColorTransfer,
			MatrixCoefficients:      stream.ColorSpace,
			IsHDR:                   detectHDR(stream.ColorPrimaries, stream.ColorTransfer, stream.ColorSpace),
		},
	}, nil
}

// ParseFrameRate parses an ffprobe rate such as "30000/1001" or "25".
func ParseFrameRate(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, errors.NewFFprobeParseError(fmt.Sprintf("invalid frame rate %q", s))
	}
	d := 1.0
	if found {
		if d, err = strconv.ParseFloat(den, 64); err != nil {
			return 0, errors.NewFFprobeParseError(fmt.Sprintf("invalid frame rate %q", s))
		}
	}
	if n <= 0 || d <= 0 {
		return 0, errors.NewFFprobeParseError(fmt.Sprintf("invalid frame rate %q", s))
	}
	return n / d, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// detectHDR determines if content is HDR based on color metadata.
func detectHDR(primaries, transfer, matrix string) bool {
	// Check for HDR primaries (BT.2020)
	if containsCI(primaries, "bt2020") || containsCI(primaries, "bt.2020") || containsCI(primaries, "bt2100") {
		return true
	}

	// Check for HDR transfer characteristics (PQ, HLG)
	if containsCI(transfer, "pq") || containsCI(transfer, "smpte2084") || containsCI(transfer, "hlg") || containsCI(transfer, "arib-std-b67") {
		return true
	}

	return containsCI(matrix, "bt2020") || containsCI(matrix, "bt.2020")
}

// containsCI performs a case-insensitive substring check.
func containsCI(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
