// Package config provides configuration types and defaults for hecate.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Default constants
const (
	// DefaultThumbnailCount is the number of thumbnails written per video.
	DefaultThumbnailCount = 5

	// DefaultFrameStep keeps every decoded frame.
	DefaultFrameStep = 1

	// DefaultInvalidDropWindow is the neighbour window (seconds) around rejected frames.
	DefaultInvalidDropWindow = 0.15

	// DefaultEngagementLo is the start of the engagement window relative to a comment (seconds).
	DefaultEngagementLo = -3.0

	// DefaultEngagementHi is the end of the engagement window relative to a comment (seconds).
	DefaultEngagementHi = 7.0

	// DefaultEngagementWeight scales (1 - engagement) in the selection score.
	DefaultEngagementWeight = 1.0

	// DefaultMinShotLen is the minimum number of frames a shot must exceed.
	DefaultMinShotLen = 40

	// DefaultQualityFilterRatio bounds each low quality ranking slice.
	DefaultQualityFilterRatio = 0.15

	// DefaultDarkThreshold flags frames with brightness below it.
	DefaultDarkThreshold = 0.075

	// DefaultBlurThreshold flags frames with sharpness below it.
	DefaultBlurThreshold = 0.08

	// DefaultUniformThreshold flags frames with uniformity above it.
	DefaultUniformThreshold = 0.8

	// DefaultTransitionFilterRatio bounds each transition ranking slice.
	DefaultTransitionFilterRatio = 0.1

	// DefaultCutThreshold flags frames with a stillness signal at or above it.
	DefaultCutThreshold = 0.5

	// DefaultECRThreshold flags ranked frames with an edge change ratio at or above it.
	DefaultECRThreshold = 0.0

	// DefaultPyramidLevels is the spatial pyramid depth of frame descriptors.
	DefaultPyramidLevels = 2

	// DefaultColorBins is the histogram size per HSV channel.
	DefaultColorBins = 128

	// DefaultEdgeOrientationBins is the gradient orientation histogram size.
	DefaultEdgeOrientationBins = 8

	// DefaultEdgeMagnitudeBins is the gradient magnitude histogram size.
	DefaultEdgeMagnitudeBins = 8

	// DefaultClusterAttempts is the number of k-means++ restarts.
	DefaultClusterAttempts = 3

	// DefaultClusterMaxIterations bounds Lloyd iterations per attempt.
	DefaultClusterMaxIterations = 1000

	// DefaultClusterEpsilon stops iterating once no center moves further.
	DefaultClusterEpsilon = 1e-4

	// DefaultSeed seeds k-means++ initialization.
	DefaultSeed int64 = 1

	// DefaultJPEGQuality is the output thumbnail quality.
	DefaultJPEGQuality = 95

	// MinSelectionClusters and MaxSelectionClusters clamp the final clustering K.
	MinSelectionClusters = 5
	MaxSelectionClusters = 30

	// MaxThumbnailCount caps the requested thumbnails.
	MaxThumbnailCount = 100
)

// Preset trades analysis depth for speed.
type Preset string

const (
	PresetFast     Preset = "fast"
	PresetBalanced Preset = "balanced"
	PresetThorough Preset = "thorough"
)

// ParsePreset parses a string into a Preset.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(s) {
	case "fast":
		return PresetFast, nil
	case "balanced":
		return PresetBalanced, nil
	case "thorough":
		return PresetThorough, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: fast, balanced, thorough", ErrInvalidPreset, s)
	}
}

// String returns the string representation of the preset.
func (p Preset) String() string {
	return string(p)
}

// PresetValues contains bundled parameter values for a preset.
type PresetValues struct {
	FrameStep       int
	AnalysisWidth   int
	PyramidLevels   int
	ClusterAttempts int
}

// GetPresetValues returns the values for a given preset.
func GetPresetValues(p Preset) PresetValues {
	switch p {
	case PresetFast:
		return PresetValues{FrameStep: 2, AnalysisWidth: 320, PyramidLevels: 1, ClusterAttempts: 1}
	case PresetThorough:
		return PresetValues{FrameStep: 1, AnalysisWidth: 0, PyramidLevels: 3, ClusterAttempts: 5}
	default:
		return PresetValues{
			FrameStep:       DefaultFrameStep,
			AnalysisWidth:   0,
			PyramidLevels:   DefaultPyramidLevels,
			ClusterAttempts: DefaultClusterAttempts,
		}
	}
}

// Window is a time interval relative to a comment, in seconds.
type Window struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// Config holds all configuration for thumbnail extraction.
type Config struct {
	// Input/output paths
	InputPath    string `yaml:"-"`
	OutputDir    string `yaml:"output_dir"`
	LogDir       string `yaml:"log_dir"`
	CommentsPath string `yaml:"comments"` // Empty means resolve beside the video

	// Selection parameters
	ThumbnailCount    int     `yaml:"thumbnail_count"`
	FrameStep         int     `yaml:"frame_step"`
	InvalidDropWindow float64 `yaml:"invalid_drop_window"`
	EngagementWindow  Window  `yaml:"engagement_window"`
	EngagementWeight  float64 `yaml:"engagement_weight"`
	EngagementEnabled bool    `yaml:"engagement"`

	// Segmentation
	MinShotLen int `yaml:"min_shot_len"`

	// Quality filter
	QualityFilterRatio float64 `yaml:"quality_filter_ratio"`
	DarkThreshold      float64 `yaml:"dark_threshold"`
	BlurThreshold      float64 `yaml:"blur_threshold"`
	UniformThreshold   float64 `yaml:"uniform_threshold"`

	// Transition filter
	TransitionFilterRatio float64 `yaml:"transition_filter_ratio"`
	CutThreshold          float64 `yaml:"cut_threshold"`
	ECRThreshold          float64 `yaml:"ecr_threshold"`

	// Descriptors
	PyramidLevels       int `yaml:"pyramid_levels"`
	ColorBins           int `yaml:"color_bins"`
	EdgeOrientationBins int `yaml:"edge_orientation_bins"`
	EdgeMagnitudeBins   int `yaml:"edge_magnitude_bins"`

	// Clustering
	ClusterAttempts      int     `yaml:"cluster_attempts"`
	ClusterMaxIterations int     `yaml:"cluster_max_iterations"`
	ClusterEpsilon       float64 `yaml:"cluster_epsilon"`
	Seed                 int64   `yaml:"seed"`

	// Processing options
	Workers       int  `yaml:"workers"`
	AnalysisWidth int  `yaml:"analysis_width"` // 0 keeps native width
	Responsive    bool `yaml:"responsive"`     // Lower process priority

	// Output options
	JPEGQuality    int  `yaml:"jpeg_quality"`
	ThumbnailWidth int  `yaml:"thumbnail_width"` // 0 keeps native width
	DumpAnalysis   bool `yaml:"dump_analysis"`

	// Selected preset (optional)
	HecatePreset *Preset `yaml:"-"`

	// RunID tags analysis dumps; empty generates one per video.
	RunID string `yaml:"-"`
}

// NewConfig creates a new Config with default values.
func NewConfig(inputPath, outputDir, logDir string) *Config {
	return &Config{
		InputPath:             inputPath,
		OutputDir:             outputDir,
		LogDir:                logDir,
		ThumbnailCount:        DefaultThumbnailCount,
		FrameStep:             DefaultFrameStep,
		InvalidDropWindow:     DefaultInvalidDropWindow,
		EngagementWindow:      Window{Lo: DefaultEngagementLo, Hi: DefaultEngagementHi},
		EngagementWeight:      DefaultEngagementWeight,
		EngagementEnabled:     true,
		MinShotLen:            DefaultMinShotLen,
		QualityFilterRatio:    DefaultQualityFilterRatio,
		DarkThreshold:         DefaultDarkThreshold,
		BlurThreshold:         DefaultBlurThreshold,
		UniformThreshold:      DefaultUniformThreshold,
		TransitionFilterRatio: DefaultTransitionFilterRatio,
		CutThreshold:          DefaultCutThreshold,
		ECRThreshold:          DefaultECRThreshold,
		PyramidLevels:         DefaultPyramidLevels,
		ColorBins:             DefaultColorBins,
		EdgeOrientationBins:   DefaultEdgeOrientationBins,
		EdgeMagnitudeBins:     DefaultEdgeMagnitudeBins,
		ClusterAttempts:       DefaultClusterAttempts,
		ClusterMaxIterations:  DefaultClusterMaxIterations,
		ClusterEpsilon:        DefaultClusterEpsilon,
		Seed:                  DefaultSeed,
		Workers:               runtime.NumCPU(),
		JPEGQuality:           DefaultJPEGQuality,
	}
}

// ApplyPreset applies the given preset to the config.
func (c *Config) ApplyPreset(p Preset) {
	values := GetPresetValues(p)
	c.HecatePreset = &p
	c.FrameStep = values.FrameStep
	c.AnalysisWidth = values.AnalysisWidth
	c.PyramidLevels = values.PyramidLevels
	c.ClusterAttempts = values.ClusterAttempts
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ThumbnailCount <= 0 || c.ThumbnailCount > MaxThumbnailCount {
		return fmt.Errorf("%w: must be 1-%d, got %d", ErrInvalidThumbnailCount, MaxThumbnailCount, c.ThumbnailCount)
	}

	if c.FrameStep < 1 {
		return fmt.Errorf("%w: must be >= 1, got %d", ErrInvalidFrameStep, c.FrameStep)
	}

	if c.InvalidDropWindow < 0 {
		return fmt.Errorf("%w: invalid_drop_window must be >= 0, got %g", ErrInvalidWindow, c.InvalidDropWindow)
	}

	if c.EngagementWindow.Lo >= c.EngagementWindow.Hi {
		return fmt.Errorf("%w: engagement window (%g, %g) is inverted or empty",
			ErrInvalidWindow, c.EngagementWindow.Lo, c.EngagementWindow.Hi)
	}

	if c.EngagementWeight < 0 {
		return fmt.Errorf("%w: must be >= 0, got %g", ErrInvalidWeight, c.EngagementWeight)
	}

	if c.MinShotLen < 1 {
		return fmt.Errorf("%w: must be >= 1, got %d", ErrInvalidShotLength, c.MinShotLen)
	}

	for name, ratio := range map[string]float64{
		"quality_filter_ratio":    c.QualityFilterRatio,
		"transition_filter_ratio": c.TransitionFilterRatio,
	} {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("%w: %s must be 0-1, got %g", ErrInvalidRatio, name, ratio)
		}
	}

	if c.PyramidLevels < 1 || c.ColorBins < 1 || c.EdgeOrientationBins < 1 || c.EdgeMagnitudeBins < 1 {
		return fmt.Errorf("%w: levels=%d color=%d orientation=%d magnitude=%d", ErrInvalidDescriptor,
			c.PyramidLevels, c.ColorBins, c.EdgeOrientationBins, c.EdgeMagnitudeBins)
	}

	if c.ClusterAttempts < 1 || c.ClusterMaxIterations < 1 || c.ClusterEpsilon <= 0 {
		return fmt.Errorf("%w: attempts=%d iterations=%d epsilon=%g", ErrInvalidClustering,
			c.ClusterAttempts, c.ClusterMaxIterations, c.ClusterEpsilon)
	}

	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: must be 1-100, got %d", ErrInvalidJPEGQuality, c.JPEGQuality)
	}

	if c.AnalysisWidth < 0 || c.ThumbnailWidth < 0 {
		return fmt.Errorf("%w: analysis=%d thumbnail=%d", ErrInvalidWidth, c.AnalysisWidth, c.ThumbnailWidth)
	}

	return nil
}

// WorkerCount returns the number of per-frame workers, at least 1.
func (c *Config) WorkerCount() int {
	return max(c.Workers, 1)
}

// SelectionClusters returns the final clustering K for the requested thumbnail count.
func (c *Config) SelectionClusters() int {
	return min(max(c.ThumbnailCount, MinSelectionClusters), MaxSelectionClusters)
}
