package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/hecate/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	greenBold  *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr)
}

// NewTerminalReporterWithWriters creates a terminal reporter writing text to
// out and errors and progress bars to errOut.
func NewTerminalReporterWithWriters(out, errOut io.Writer) *TerminalReporter {
	return &TerminalReporter{
		out:       out,
		errOut:    errOut,
		cyan:      color.New(color.FgCyan, color.Bold),
		green:     color.New(color.FgGreen),
		greenBold: color.New(color.FgGreen, color.Bold),
		yellow:    color.New(color.FgYellow, color.Bold),
		red:       color.New(color.FgRed, color.Bold),
		magenta:   color.New(color.FgMagenta),
		bold:      color.New(color.Bold),
		faint:     color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

func (r *TerminalReporter) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

func (r *TerminalReporter) heading(title string) {
	r.println()
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	r.printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.heading("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "CPU:", fmt.Sprintf("%d cores, %d threads", summary.PhysicalCores, summary.LogicalCores))
	if summary.Memory > 0 {
		r.printLabel(10, "Memory:", util.FormatBytes(summary.Memory)+" available")
	}
	r.printLabel(10, "Workers:", fmt.Sprint(summary.Workers))
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.heading("VIDEO")
	const w = 11
	r.printLabel(w, "File:", summary.InputFile)
	r.printLabel(w, "Output:", summary.OutputDir)
	r.printLabel(w, "Duration:", summary.Duration)
	r.printLabel(w, "Resolution:", summary.Resolution)
	r.printLabel(w, "Frames:", fmt.Sprintf("%d at %s", summary.Frames, summary.FrameRate))
	r.printLabel(w, "Dynamic:", summary.DynamicRange)
	if summary.CommentsFile != "" {
		r.printLabel(w, "Comments:", summary.CommentsFile)
	} else {
		r.printLabel(w, "Comments:", r.faint.Sprint("none, engagement disabled"))
	}
	if summary.Preset != "" {
		r.printLabel(w, "Preset:", summary.Preset)
	}
}

func (r *TerminalReporter) StageStarted(info StageInfo) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastStage != info.Stage {
		r.println()
		_, _ = r.cyan.Fprintln(r.out, strings.ToUpper(info.Stage))
		r.lastStage = info.Stage
	}
	if info.Message != "" {
		r.printf("  %s %s\n", r.magenta.Sprint("›"), info.Message)
	}
	if info.Total <= 0 {
		return
	}

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      stageLabel(info.Stage) + " [",
			BarEnd:        "]",
		}),
	)
}

func stageLabel(stage string) string {
	if stage == "" {
		return "Working"
	}
	return strings.ToUpper(stage[:1]) + stage[1:]
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		if update.Message != "" {
			r.printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
		}
		return
	}

	clamped := min(max(update.Percent, 0), 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("%d/%d frames", update.Current, update.Total)
	if update.ETA != nil {
		desc += ", eta " + util.FormatDurationFromSecs(int64(update.ETA.Seconds()))
	}
	r.progress.Describe(desc)
}

func (r *TerminalReporter) StageComplete(outcome StageOutcome) {
	r.finishProgress()

	msg := outcome.Message
	if msg == "" {
		msg = "done"
	}
	elapsed := r.faint.Sprintf("(%s)", util.FormatDurationFromSecs(int64(outcome.Elapsed.Seconds())))
	r.printf("  %s %s %s\n", r.green.Sprint("✓"), msg, elapsed)
}

func (r *TerminalReporter) SelectionResult(summary SelectionSummary) {
	r.heading("SELECTION")
	const w = 11
	r.printLabel(w, "Regime:", summary.Regime)
	r.printLabel(w, "Valid:", fmt.Sprintf("%d frames", summary.ValidCount))
	r.printLabel(w, "Shots:", fmt.Sprintf("%d (%d sub-shots)", summary.Shots, summary.SubShots))
	r.printLabel(w, "Candidates:", fmt.Sprint(summary.Candidates))
	engagement := "off"
	if summary.Engagement {
		engagement = "on"
	}
	r.printLabel(w, "Engagement:", engagement)
	r.printLabel(w, "Frames:", util.FormatFrameList(summary.Frames, 10))
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	r.finishProgress()

	r.heading("VALIDATION")

	if summary.Passed {
		r.printf("  %s\n", r.greenBold.Sprint("All checks passed"))
	} else {
		r.printf("  %s\n", r.red.Sprint("Validation failed"))
	}

	// Find the longest step name for alignment
	maxLen := 0
	for _, step := range summary.Steps {
		maxLen = max(maxLen, len(step.Name))
	}

	for _, step := range summary.Steps {
		status := r.green.Sprint("✓")
		if !step.Passed {
			status = r.red.Sprint("✗")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		r.printf("  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
}

func (r *TerminalReporter) ExtractionComplete(outcome ExtractionOutcome) {
	r.heading("RESULTS")
	r.printLabel(11, "Thumbnails:", r.bold.Sprint(len(outcome.Thumbnails)))
	for i, path := range outcome.Thumbnails {
		frame := ""
		if i < len(outcome.Frames) {
			frame = r.faint.Sprintf(" (frame %d)", outcome.Frames[i])
		}
		r.printf("    %s%s\n", filepath.Base(path), frame)
	}
	if outcome.AnalysisFile != "" {
		r.printLabel(11, "Analysis:", outcome.AnalysisFile)
	}
	r.printf("  %s %s (%.1f frames/s)\n",
		r.bold.Sprint("Time:"),
		util.FormatDurationFromSecs(int64(outcome.TotalTime.Seconds())),
		outcome.FramesPerSec)
	r.printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(outcome.OutputDir))
}

func (r *TerminalReporter) Warning(message string) {
	r.println()
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()
	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	r.println()
	r.printf("%s %s\n", r.greenBold.Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.heading("BATCH")
	r.printf("  Processing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		r.printf("  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	r.mu.Lock()
	r.lastStage = ""
	r.mu.Unlock()
	r.printf("\nFile %s of %d\n", r.bold.Sprint(context.CurrentFile), context.TotalFiles)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.heading("BATCH SUMMARY")
	r.printf("  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	r.printf("  Validation: %s passed, %s failed\n",
		r.green.Sprint(summary.ValidationPassedCount),
		r.red.Sprint(summary.ValidationFailedCount))
	r.printf("  Thumbnails: %d\n", summary.TotalThumbnails)
	r.printf("  Time: %s\n", util.FormatDurationFromSecs(int64(summary.TotalDuration.Seconds())))

	for _, result := range summary.FileResults {
		r.printf("  - %s (%d thumbnails, %s)\n", result.Filename, result.Thumbnails, result.Regime)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	r.printf("  %s\n", r.faint.Sprint(message))
}
