// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains hardware information.
type HardwareSummary struct {
	Hostname      string
	LogicalCores  int
	PhysicalCores int
	Memory        uint64 // available bytes, 0 when unknown
	Workers       int
}

// InitializationSummary describes the current video before analysis.
type InitializationSummary struct {
	InputFile    string
	OutputDir    string
	CommentsFile string
	Duration     string
	Resolution   string
	FrameRate    string
	Frames       int
	DynamicRange string
	Preset       string
}

// StageInfo announces a pipeline stage. Total is the number of work items
// the stage reports progress over, 0 when it reports none.
type StageInfo struct {
	Stage   string
	Message string
	Total   int
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Current int
	Total   int
	Percent float32
	Message string
	ETA     *time.Duration
}

// StageOutcome closes a stage.
type StageOutcome struct {
	Stage    string
	Message  string
	Elapsed  time.Duration
	Rejected int
}

// SelectionSummary describes the selector decision.
type SelectionSummary struct {
	Regime     string
	Candidates int
	Shots      int
	SubShots   int
	ValidCount int
	Frames     []int
	Engagement bool
}

// ValidationSummary contains validation results.
type ValidationSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// ExtractionOutcome contains final extraction results for one video.
type ExtractionOutcome struct {
	InputFile    string
	OutputDir    string
	Thumbnails   []string
	Frames       []int
	Regime       string
	AnalysisFile string
	TotalFrames  int
	TotalTime    time.Duration
	FramesPerSec float64
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount       int
	TotalFiles            int
	TotalThumbnails       int
	TotalDuration         time.Duration
	FileResults           []FileResult
	ValidationPassedCount int
	ValidationFailedCount int
}

// FileResult contains per-file extraction result.
type FileResult struct {
	Filename   string
	Thumbnails int
	Regime     string
}
