package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events, one object per line.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
	now                func() time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
		now:                time.Now,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return r.now().Unix()
}

func (r *JSONReporter) write(v map[string]any) {
	v["timestamp"] = r.timestamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]any{
		"type":           "hardware",
		"hostname":       summary.Hostname,
		"logical_cores":  summary.LogicalCores,
		"physical_cores": summary.PhysicalCores,
		"memory_bytes":   summary.Memory,
		"workers":        summary.Workers,
	})
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]any{
		"type":          "initialization",
		"input_file":    summary.InputFile,
		"output_dir":    summary.OutputDir,
		"comments_file": summary.CommentsFile,
		"duration":      summary.Duration,
		"resolution":    summary.Resolution,
		"frame_rate":    summary.FrameRate,
		"frames":        summary.Frames,
		"dynamic_range": summary.DynamicRange,
		"preset":        summary.Preset,
	})
}

func (r *JSONReporter) StageStarted(info StageInfo) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]any{
		"type":    "stage_started",
		"stage":   info.Stage,
		"message": info.Message,
		"total":   info.Total,
	})
}

// StageProgress emits at most one event per percent bucket, plus a heartbeat
// every few seconds when progress stalls.
func (r *JSONReporter) StageProgress(update StageProgress) {
	const minInterval = 5 * time.Second

	bucket := int(update.Percent)
	now := r.now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || update.Percent >= 100

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	event := map[string]any{
		"type":    "stage_progress",
		"stage":   update.Stage,
		"current": update.Current,
		"total":   update.Total,
		"percent": update.Percent,
		"message": update.Message,
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) StageComplete(outcome StageOutcome) {
	r.write(map[string]any{
		"type":            "stage_complete",
		"stage":           outcome.Stage,
		"message":         outcome.Message,
		"elapsed_seconds": outcome.Elapsed.Seconds(),
		"rejected":        outcome.Rejected,
	})
}

func (r *JSONReporter) SelectionResult(summary SelectionSummary) {
	frames := summary.Frames
	if frames == nil {
		frames = []int{}
	}
	r.write(map[string]any{
		"type":        "selection_result",
		"regime":      summary.Regime,
		"candidates":  summary.Candidates,
		"shots":       summary.Shots,
		"sub_shots":   summary.SubShots,
		"valid_count": summary.ValidCount,
		"frames":      frames,
		"engagement":  summary.Engagement,
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]any, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]any{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]any{
		"type":              "validation_complete",
		"validation_passed": summary.Passed,
		"validation_steps":  steps,
	})
}

func (r *JSONReporter) ExtractionComplete(outcome ExtractionOutcome) {
	thumbnails := outcome.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}
	r.write(map[string]any{
		"type":             "extraction_complete",
		"input_file":       outcome.InputFile,
		"output_dir":       outcome.OutputDir,
		"thumbnails":       thumbnails,
		"frames":           outcome.Frames,
		"regime":           outcome.Regime,
		"analysis_file":    outcome.AnalysisFile,
		"total_frames":     outcome.TotalFrames,
		"duration_seconds": outcome.TotalTime.Seconds(),
		"frames_per_sec":   outcome.FramesPerSec,
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]any{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]any{
		"type":    "operation_complete",
		"message": message,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]any{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]any{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]any, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		results[i] = map[string]any{
			"filename":   fr.Filename,
			"thumbnails": fr.Thumbnails,
			"regime":     fr.Regime,
		}
	}
	r.write(map[string]any{
		"type":                    "batch_complete",
		"successful_count":        summary.SuccessfulCount,
		"total_files":             summary.TotalFiles,
		"total_thumbnails":        summary.TotalThumbnails,
		"total_duration_seconds":  int64(summary.TotalDuration.Seconds()),
		"validation_passed_count": summary.ValidationPassedCount,
		"validation_failed_count": summary.ValidationFailedCount,
		"file_results":            results,
	})
}

// Verbose messages are terminal-only.
func (r *JSONReporter) Verbose(string) {}
