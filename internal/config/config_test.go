package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/input/a.mp4", "/output", "/log")

	if cfg.InputPath != "/input/a.mp4" {
		t.Errorf("expected InputPath=/input/a.mp4, got %s", cfg.InputPath)
	}
	if cfg.OutputDir != "/output" {
		t.Errorf("expected OutputDir=/output, got %s", cfg.OutputDir)
	}

	// Check defaults
	if cfg.ThumbnailCount != DefaultThumbnailCount {
		t.Errorf("expected ThumbnailCount=%d, got %d", DefaultThumbnailCount, cfg.ThumbnailCount)
	}
	if cfg.MinShotLen != DefaultMinShotLen {
		t.Errorf("expected MinShotLen=%d, got %d", DefaultMinShotLen, cfg.MinShotLen)
	}
	if cfg.EngagementWindow != (Window{Lo: -3, Hi: 7}) {
		t.Errorf("expected window (-3, 7), got %+v", cfg.EngagementWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantSentinel error
	}{
		{
			name:    "default config is valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:         "zero thumbnails is invalid",
			modify:       func(c *Config) { c.ThumbnailCount = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidThumbnailCount,
		},
		{
			name:         "negative thumbnails is invalid",
			modify:       func(c *Config) { c.ThumbnailCount = -2 },
			wantErr:      true,
			wantSentinel: ErrInvalidThumbnailCount,
		},
		{
			name:    "one thumbnail is valid",
			modify:  func(c *Config) { c.ThumbnailCount = 1 },
			wantErr: false,
		},
		{
			name:         "frame step 0 is invalid",
			modify:       func(c *Config) { c.FrameStep = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidFrameStep,
		},
		{
			name:         "inverted engagement window is invalid",
			modify:       func(c *Config) { c.EngagementWindow = Window{Lo: 7, Hi: -3} },
			wantErr:      true,
			wantSentinel: ErrInvalidWindow,
		},
		{
			name:         "empty engagement window is invalid",
			modify:       func(c *Config) { c.EngagementWindow = Window{Lo: 2, Hi: 2} },
			wantErr:      true,
			wantSentinel: ErrInvalidWindow,
		},
		{
			name:         "negative drop window is invalid",
			modify:       func(c *Config) { c.InvalidDropWindow = -0.1 },
			wantErr:      true,
			wantSentinel: ErrInvalidWindow,
		},
		{
			name:    "zero drop window is valid",
			modify:  func(c *Config) { c.InvalidDropWindow = 0 },
			wantErr: false,
		},
		{
			name:         "negative weight is invalid",
			modify:       func(c *Config) { c.EngagementWeight = -1 },
			wantErr:      true,
			wantSentinel: ErrInvalidWeight,
		},
		{
			name:         "ratio above one is invalid",
			modify:       func(c *Config) { c.QualityFilterRatio = 1.5 },
			wantErr:      true,
			wantSentinel: ErrInvalidRatio,
		},
		{
			name:         "zero pyramid levels is invalid",
			modify:       func(c *Config) { c.PyramidLevels = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidDescriptor,
		},
		{
			name:         "zero epsilon is invalid",
			modify:       func(c *Config) { c.ClusterEpsilon = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidClustering,
		},
		{
			name:         "jpeg quality 101 is invalid",
			modify:       func(c *Config) { c.JPEGQuality = 101 },
			wantErr:      true,
			wantSentinel: ErrInvalidJPEGQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/in", "/out", "/log")
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want sentinel %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		input   string
		want    Preset
		wantErr bool
	}{
		{"fast", PresetFast, false},
		{"BALANCED", PresetBalanced, false},
		{"Thorough", PresetThorough, false},
		{"grain", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePreset(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePreset(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidPreset) {
				t.Errorf("expected ErrInvalidPreset, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePreset(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := NewConfig("", "", "")
	cfg.ApplyPreset(PresetFast)

	if cfg.HecatePreset == nil || *cfg.HecatePreset != PresetFast {
		t.Fatalf("expected preset to be recorded")
	}
	if cfg.FrameStep != 2 {
		t.Errorf("expected FrameStep=2, got %d", cfg.FrameStep)
	}
	if cfg.PyramidLevels != 1 {
		t.Errorf("expected PyramidLevels=1, got %d", cfg.PyramidLevels)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset config should be valid: %v", err)
	}
}

func TestSelectionClusters(t *testing.T) {
	tests := []struct {
		thumbnails int
		want       int
	}{
		{1, 5},
		{5, 5},
		{12, 12},
		{30, 30},
		{50, 30},
	}

	for _, tt := range tests {
		cfg := NewConfig("", "", "")
		cfg.ThumbnailCount = tt.thumbnails
		if got := cfg.SelectionClusters(); got != tt.want {
			t.Errorf("SelectionClusters() with T=%d = %d, want %d", tt.thumbnails, got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hecate.yaml")
	doc := `preset: fast
thumbnail_count: 8
frame_step: 3
engagement_window:
  lo: -2
  hi: 5
engagement_weight: 0.8
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig("/in", "/out", "/log")
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.ThumbnailCount != 8 {
		t.Errorf("ThumbnailCount = %d, want 8", cfg.ThumbnailCount)
	}
	// Explicit key wins over the preset value.
	if cfg.FrameStep != 3 {
		t.Errorf("FrameStep = %d, want 3", cfg.FrameStep)
	}
	// Preset value kept where the file is silent.
	if cfg.PyramidLevels != 1 {
		t.Errorf("PyramidLevels = %d, want 1", cfg.PyramidLevels)
	}
	if cfg.EngagementWindow != (Window{Lo: -2, Hi: 5}) {
		t.Errorf("EngagementWindow = %+v", cfg.EngagementWindow)
	}
	if cfg.EngagementWeight != 0.8 {
		t.Errorf("EngagementWeight = %g, want 0.8", cfg.EngagementWeight)
	}
	if cfg.MinShotLen != DefaultMinShotLen {
		t.Errorf("MinShotLen = %d, want default", cfg.MinShotLen)
	}
	if cfg.OutputDir != "/out" {
		t.Errorf("OutputDir = %q, want /out", cfg.OutputDir)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if err := LoadFile(filepath.Join(dir, "missing.yaml"), NewConfig("", "", "")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("preset: grain\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := LoadFile(bad, NewConfig("", "", ""))
	if !errors.Is(err, ErrInvalidPreset) {
		t.Errorf("expected ErrInvalidPreset, got %v", err)
	}
}
