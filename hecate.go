// Package hecate provides a Go library for picking thumbnails from video.
//
// Hecate decodes a video with ffmpeg, rejects dark, blurry, uniform and
// transitional frames, segments the rest into shots, collapses redundant
// frames and picks the stillest, most engaging representatives.
//
// Basic usage:
//
//	extractor, err := hecate.New(
//	    hecate.WithPreset(hecate.PresetBalanced),
//	    hecate.WithThumbnailCount(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := extractor.Extract(ctx, "talk.mp4", "thumbs/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(result.Thumbnails)
package hecate

import (
	"context"
	"fmt"

	"github.com/five82/hecate/internal/config"
	"github.com/five82/hecate/internal/discovery"
	"github.com/five82/hecate/internal/processing"
	"github.com/five82/hecate/internal/reporter"
	"github.com/five82/hecate/internal/util"
)

// Re-export preset types
type Preset = config.Preset

const (
	PresetFast     = config.PresetFast
	PresetBalanced = config.PresetBalanced
	PresetThorough = config.PresetThorough
)

// Reporter receives progress events. See the internal reporter package for
// the event types; NewTerminalReporter and NewJSONReporter are ready-made.
type Reporter = reporter.Reporter

// NewTerminalReporter returns a Reporter printing human-friendly progress.
func NewTerminalReporter() Reporter { return reporter.NewTerminalReporter() }

// NewJSONReporter returns a Reporter printing NDJSON events to stdout.
func NewJSONReporter() Reporter { return reporter.NewJSONReporter() }

// ParsePreset converts a preset string to a Preset value.
// Valid values are "fast", "balanced", and "thorough" (case-insensitive).
func ParsePreset(s string) (Preset, error) {
	return config.ParsePreset(s)
}

// Extractor is the main entry point for thumbnail extraction.
type Extractor struct {
	config *config.Config
}

// Result contains the result of a single video.
type Result struct {
	OutputDir        string
	Thumbnails       []string
	Frames           []int
	Regime           string
	AnalysisFile     string
	ValidationPassed bool
}

// BatchResult contains the result of a batch extraction.
type BatchResult struct {
	Results               []Result
	SuccessfulCount       int
	TotalFiles            int
	TotalThumbnails       int
	ValidationPassedCount int
}

// Option configures the extractor.
type Option func(*config.Config)

// New creates a new Extractor with the given options.
func New(opts ...Option) (*Extractor, error) {
	cfg := config.NewConfig(".", ".", ".")

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Extractor{config: cfg}, nil
}

// WithPreset applies an analysis preset.
func WithPreset(p Preset) Option {
	return func(c *config.Config) {
		c.ApplyPreset(p)
	}
}

// WithThumbnailCount sets the number of thumbnails per video.
func WithThumbnailCount(n int) Option {
	return func(c *config.Config) {
		c.ThumbnailCount = n
	}
}

// WithFrameStep analyses every step-th decoded frame.
func WithFrameStep(step int) Option {
	return func(c *config.Config) {
		c.FrameStep = step
	}
}

// WithMinShotLen sets the number of frames a shot must exceed.
func WithMinShotLen(frames int) Option {
	return func(c *config.Config) {
		c.MinShotLen = frames
	}
}

// WithComments reads viewer comments from path instead of looking beside
// the video. Only meaningful for single-video extraction.
func WithComments(path string) Option {
	return func(c *config.Config) {
		c.CommentsPath = path
	}
}

// WithEngagementWeight scales how much comment engagement counts against
// stillness when scoring frames.
func WithEngagementWeight(w float64) Option {
	return func(c *config.Config) {
		c.EngagementWeight = w
	}
}

// WithoutEngagement ignores viewer comments entirely.
func WithoutEngagement() Option {
	return func(c *config.Config) {
		c.EngagementEnabled = false
	}
}

// WithWorkers sets the number of per-frame analysis workers.
func WithWorkers(n int) Option {
	return func(c *config.Config) {
		c.Workers = n
	}
}

// WithAnalysisWidth decodes frames for analysis at the given width.
// Thumbnails are still written from native resolution frames.
func WithAnalysisWidth(width int) Option {
	return func(c *config.Config) {
		c.AnalysisWidth = width
	}
}

// WithJPEGQuality sets the thumbnail JPEG quality (1-100).
func WithJPEGQuality(q int) Option {
	return func(c *config.Config) {
		c.JPEGQuality = q
	}
}

// WithThumbnailWidth downscales thumbnails wider than width.
func WithThumbnailWidth(width int) Option {
	return func(c *config.Config) {
		c.ThumbnailWidth = width
	}
}

// WithSeed seeds the k-means initialization.
func WithSeed(seed int64) Option {
	return func(c *config.Config) {
		c.Seed = seed
	}
}

// WithAnalysisDump writes the per-frame analysis next to the thumbnails.
func WithAnalysisDump() Option {
	return func(c *config.Config) {
		c.DumpAnalysis = true
	}
}

// WithResponsive lowers the process priority while extracting.
func WithResponsive() Option {
	return func(c *config.Config) {
		c.Responsive = true
	}
}

// Extract writes thumbnails for one video under outputDir. rep may be nil.
func (e *Extractor) Extract(ctx context.Context, input, outputDir string, rep ...Reporter) (*Result, error) {
	cfg := *e.config
	cfg.InputPath = input
	cfg.OutputDir = outputDir

	// Ensure output directory exists
	if err := util.EnsureDirectory(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	r, err := processing.ExtractVideo(ctx, &cfg, input, pickReporter(rep))
	if err != nil {
		return nil, err
	}
	res := toResult(*r)
	return &res, nil
}

// ExtractBatch writes thumbnails for several videos. Videos that fail are
// skipped; an error is returned only when none succeeded or the context
// was cancelled.
func (e *Extractor) ExtractBatch(ctx context.Context, inputs []string, outputDir string, rep ...Reporter) (*BatchResult, error) {
	cfg := *e.config
	cfg.OutputDir = outputDir
	// A shared comment file cannot apply to every video.
	cfg.CommentsPath = ""

	if err := util.EnsureDirectory(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results, err := processing.ProcessVideos(ctx, &cfg, inputs, pickReporter(rep))
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{TotalFiles: len(inputs)}
	for _, r := range results {
		batch.Results = append(batch.Results, toResult(r))
		batch.SuccessfulCount++
		batch.TotalThumbnails += len(r.Thumbnails)
		if r.ValidationPassed {
			batch.ValidationPassedCount++
		}
	}
	return batch, nil
}

// FindVideos finds video files in a directory.
func FindVideos(dir string) ([]string, error) {
	return discovery.FindVideoFiles(dir)
}

func pickReporter(rep []Reporter) reporter.Reporter {
	if len(rep) > 0 && rep[0] != nil {
		return rep[0]
	}
	return reporter.NullReporter{}
}

func toResult(r processing.ExtractResult) Result {
	return Result{
		OutputDir:        r.OutputDir,
		Thumbnails:       r.Thumbnails,
		Frames:           r.Frames,
		Regime:           r.Regime,
		AnalysisFile:     r.AnalysisFile,
		ValidationPassed: r.ValidationPassed,
	}
}
