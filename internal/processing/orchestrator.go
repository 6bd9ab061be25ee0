package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/five82/hecate/internal/analysis"
	"github.com/five82/hecate/internal/config"
	"github.com/five82/hecate/internal/engagement"
	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/ffmpeg"
	"github.com/five82/hecate/internal/ffprobe"
	"github.com/five82/hecate/internal/frame"
	"github.com/five82/hecate/internal/logging"
	"github.com/five82/hecate/internal/reporter"
	"github.com/five82/hecate/internal/thumbnail"
	"github.com/five82/hecate/internal/util"
	"github.com/five82/hecate/internal/validation"
)

// storeMemoryFraction is the share of available memory the decoded frame
// store may use before a warning is emitted.
const storeMemoryFraction = 0.8

// ExtractResult contains the result of a single video.
type ExtractResult struct {
	Filename         string
	OutputDir        string
	Thumbnails       []string
	Frames           []int // source frame numbers, in thumbnail order
	Regime           string
	Candidates       int
	AnalysisFile     string
	FramesAnalyzed   int
	Duration         time.Duration
	ValidationPassed bool
	ValidationSteps  []validation.ValidationStep
}

// ProcessVideos extracts thumbnails for a list of video files. A failing
// file is reported and skipped; cancellation stops the batch.
func ProcessVideos(
	ctx context.Context,
	cfg *config.Config,
	filesToProcess []string,
	rep reporter.Reporter,
) ([]ExtractResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	log := logging.Component("processing")

	var results []ExtractResult
	var lastErr error

	// Emit hardware information
	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname:      sysInfo.Hostname,
		LogicalCores:  sysInfo.LogicalCores,
		PhysicalCores: sysInfo.PhysicalCores,
		Memory:        sysInfo.AvailableMemory,
		Workers:       cfg.WorkerCount(),
	})

	if cfg.Responsive {
		if err := util.LowerPriority(); err != nil {
			rep.Warning(fmt.Sprintf("Could not lower process priority: %v", err))
		} else {
			log.Debug().Msg("running at reduced priority")
		}
	}

	// Show batch initialization for multiple files
	if len(filesToProcess) > 1 {
		var fileNames []string
		for _, f := range filesToProcess {
			fileNames = append(fileNames, util.GetFilename(f))
		}
		rep.BatchStarted(reporter.BatchStartInfo{
			TotalFiles: len(filesToProcess),
			FileList:   fileNames,
			OutputDir:  cfg.OutputDir,
		})
	}

	batchStart := time.Now()
	for fileIdx, inputPath := range filesToProcess {
		// Check for cancellation before starting each file
		if ctx.Err() != nil {
			rep.Warning(fmt.Sprintf("Extraction cancelled: %v", ctx.Err()))
			return results, errors.NewCancelledError()
		}

		if len(filesToProcess) > 1 {
			rep.FileProgress(reporter.FileProgressContext{
				CurrentFile: fileIdx + 1,
				TotalFiles:  len(filesToProcess),
			})
		}

		result, err := ExtractVideo(ctx, cfg, inputPath, rep)
		if err != nil {
			if errors.IsCancelled(err) || ctx.Err() != nil {
				rep.Warning("Extraction cancelled")
				return results, errors.NewCancelledError()
			}
			if errors.IsFatalInput(err) {
				log.Warn().Err(err).Str("file", inputPath).Msg("skipping unreadable input")
			} else {
				log.Error().Err(err).Str("file", inputPath).Msg("extraction failed")
			}
			rep.Error(toReporterError(inputPath, err))
			lastErr = err
			continue
		}
		results = append(results, *result)
	}

	// Generate summary
	switch len(results) {
	case 0:
		rep.Warning("No thumbnails were extracted")
		return nil, lastErr
	case 1:
		if len(filesToProcess) == 1 {
			rep.OperationComplete(fmt.Sprintf("Extracted %d thumbnails from %s",
				len(results[0].Thumbnails), results[0].Filename))
			break
		}
		fallthrough
	default:
		rep.BatchComplete(batchSummary(results, len(filesToProcess), time.Since(batchStart)))
	}

	return results, nil
}

func batchSummary(results []ExtractResult, totalFiles int, elapsed time.Duration) reporter.BatchSummary {
	summary := reporter.BatchSummary{
		SuccessfulCount: len(results),
		TotalFiles:      totalFiles,
		TotalDuration:   elapsed,
	}
	for _, r := range results {
		summary.TotalThumbnails += len(r.Thumbnails)
		summary.FileResults = append(summary.FileResults, reporter.FileResult{
			Filename:   r.Filename,
			Thumbnails: len(r.Thumbnails),
			Regime:     r.Regime,
		})
		if r.ValidationPassed {
			summary.ValidationPassedCount++
		}
	}
	summary.ValidationFailedCount = len(results) - summary.ValidationPassedCount
	return summary
}

// ExtractVideo runs the whole pipeline for one video: probe, comment
// loading, decoding, analysis, thumbnail writing and validation.
func ExtractVideo(ctx context.Context, cfg *config.Config, inputPath string, rep reporter.Reporter) (*ExtractResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	log := logging.Component("processing").With().Str("file", util.GetFilename(inputPath)).Logger()
	start := time.Now()

	info, err := ffprobe.Probe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	// A missing comment file must fail before any stage runs.
	commentsPath, comments, err := loadComments(cfg, inputPath)
	if err != nil {
		return nil, err
	}

	outputDir := thumbnail.OutputDir(cfg.OutputDir, inputPath)
	rep.Initialization(reporter.InitializationSummary{
		InputFile:    util.GetFilename(inputPath),
		OutputDir:    outputDir,
		CommentsFile: commentsPath,
		Duration:     util.FormatDuration(info.Duration),
		Resolution:   util.FormatResolution(info.Width, info.Height),
		FrameRate:    util.FormatFrameRate(info.FPS),
		Frames:       info.Frames,
		DynamicRange: formatDynamicRange(info.HDR.IsHDR),
		Preset:       formatPreset(cfg.HecatePreset),
	})
	log.Info().
		Int("width", info.Width).Int("height", info.Height).
		Float64("fps", info.FPS).Int("frames", info.Frames).
		Bool("hdr", info.HDR.IsHDR).Int("comments", len(comments)).
		Msg("video probed")

	store, err := decode(ctx, cfg, inputPath, info, rep)
	if err != nil {
		return nil, err
	}

	a, err := Analyze(ctx, cfg, store, comments, rep)
	if err != nil {
		return nil, err
	}

	sourceFrames := make([]int, len(a.Selection.Frames))
	for i, f := range a.Selection.Frames {
		sourceFrames[i] = f * cfg.FrameStep
	}
	rep.SelectionResult(reporter.SelectionSummary{
		Regime:     a.Selection.Regime.String(),
		Candidates: a.Selection.Candidates,
		Shots:      len(a.Shots),
		SubShots:   a.SubShotCount(),
		ValidCount: a.ValidCount(),
		Frames:     sourceFrames,
		Engagement: a.Engagement != nil,
	})

	if ctx.Err() != nil {
		return nil, errors.NewCancelledError()
	}

	rep.StageStarted(reporter.StageInfo{Stage: StageOutput, Message: "Writing thumbnails"})
	outStart := time.Now()
	thumbs, width, err := writeThumbnails(ctx, cfg, inputPath, info, store, sourceFrames, a.Selection.Frames, outputDir)
	if err != nil {
		return nil, err
	}

	dumpPath := ""
	if cfg.DumpAnalysis {
		dumpPath = filepath.Join(outputDir, analysis.FileName)
		dump := analysis.Build(analysis.Input{
			RunID:      runID(cfg),
			Video:      inputPath,
			Meta:       a.Meta,
			FrameStep:  cfg.FrameStep,
			Infos:      a.Infos,
			Diff:       a.Diff,
			ECR:        a.ECR,
			Engagement: a.Engagement,
			Shots:      a.Shots,
			Regime:     a.Selection.Regime.String(),
			Selection:  a.Selection.Frames,
		})
		if err := analysis.Write(dumpPath, dump); err != nil {
			return nil, err
		}
	}
	rep.StageComplete(reporter.StageOutcome{
		Stage:   StageOutput,
		Message: fmt.Sprintf("%d thumbnails written", len(thumbs)),
		Elapsed: time.Since(outStart),
	})

	vr := validation.ValidateRun(validation.Input{
		Infos:          a.Infos,
		Shots:          a.Shots,
		MinShotLen:     cfg.MinShotLen,
		Selection:      a.Selection.Frames,
		Requested:      cfg.ThumbnailCount,
		Candidates:     a.Selection.Candidates,
		Thumbnails:     thumbs,
		ThumbnailWidth: width,
	})
	steps := vr.GetValidationSteps()
	repSteps := make([]reporter.ValidationStep, len(steps))
	for i, s := range steps {
		repSteps[i] = reporter.ValidationStep{Name: s.Name, Passed: s.Passed, Details: s.Details}
	}
	rep.ValidationComplete(reporter.ValidationSummary{Passed: vr.IsValid(), Steps: repSteps})
	if !vr.IsValid() {
		log.Warn().Strs("failures", vr.GetFailures()).Msg("validation failed")
	}

	elapsed := time.Since(start)
	result := &ExtractResult{
		Filename:         util.GetFilename(inputPath),
		OutputDir:        outputDir,
		Thumbnails:       thumbs,
		Frames:           sourceFrames,
		Regime:           a.Selection.Regime.String(),
		Candidates:       a.Selection.Candidates,
		AnalysisFile:     dumpPath,
		FramesAnalyzed:   store.Len(),
		Duration:         elapsed,
		ValidationPassed: vr.IsValid(),
		ValidationSteps:  steps,
	}

	fps := 0.0
	if elapsed > 0 {
		fps = float64(store.Len()) / elapsed.Seconds()
	}
	rep.ExtractionComplete(reporter.ExtractionOutcome{
		InputFile:    result.Filename,
		OutputDir:    outputDir,
		Thumbnails:   thumbs,
		Frames:       sourceFrames,
		Regime:       result.Regime,
		AnalysisFile: dumpPath,
		TotalFrames:  store.Len(),
		TotalTime:    elapsed,
		FramesPerSec: fps,
	})
	log.Info().Ints("frames", sourceFrames).Str("regime", result.Regime).Dur("elapsed", elapsed).Msg("extraction complete")
	return result, nil
}

// loadComments resolves and reads the comment file for inputPath. Without
// an explicit path and with no file beside the video, engagement is off
// and nil comments are returned.
func loadComments(cfg *config.Config, inputPath string) (string, []engagement.Comment, error) {
	if !cfg.EngagementEnabled {
		return "", nil, nil
	}
	path, ok := util.ResolveCommentsPath(inputPath, cfg.CommentsPath)
	if !ok {
		logging.Component("processing").Debug().Str("file", inputPath).Msg("no comment file found, engagement disabled")
		return "", nil, nil
	}
	comments, err := engagement.LoadComments(path)
	if err != nil {
		return "", nil, err
	}
	if comments == nil {
		comments = []engagement.Comment{}
	}
	return path, comments, nil
}

// decode loads the frame store, keeping every FrameStep-th frame.
func decode(ctx context.Context, cfg *config.Config, inputPath string, info *ffprobe.VideoInfo, rep reporter.Reporter) (*frame.Store, error) {
	w, h := ffmpeg.ScaledSize(info.Width, info.Height, cfg.AnalysisWidth)
	kept := (info.Frames + cfg.FrameStep - 1) / cfg.FrameStep
	need := uint64(w) * uint64(h) * 3 * uint64(kept)
	if !util.FitsInMemory(need, storeMemoryFraction) {
		rep.Warning(fmt.Sprintf("Decoded frames need about %s; consider --analysis-width or --frame-step",
			util.FormatBytes(need)))
	}

	rep.StageStarted(reporter.StageInfo{
		Stage:   StageDecode,
		Message: fmt.Sprintf("Decoding at %s", util.FormatResolution(w, h)),
		Total:   info.Frames,
	})
	start := time.Now()

	dec, err := ffmpeg.NewDecoder(ctx, inputPath, info, ffmpeg.DecodeOptions{Width: cfg.AnalysisWidth, Tonemap: true})
	if err != nil {
		return nil, err
	}
	store, err := frame.Load(ctx, dec, cfg.FrameStep, func(decoded int) {
		rep.StageProgress(reporter.StageProgress{
			Stage:   StageDecode,
			Current: decoded,
			Total:   info.Frames,
			Percent: reporter.Percent(decoded, info.Frames),
		})
	})
	closeErr := dec.Close()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError()
		}
		return nil, errors.NewFFmpegError("failed to decode "+inputPath, err)
	}
	if closeErr != nil {
		return nil, closeErr
	}

	rep.StageComplete(reporter.StageOutcome{
		Stage:   StageDecode,
		Message: fmt.Sprintf("%d of %d frames stored", store.Len(), dec.Decoded()),
		Elapsed: time.Since(start),
	})
	return store, nil
}

// writeThumbnails writes the selected frames at native resolution. Frames
// come straight from the store unless it was decoded downscaled. It returns
// the written paths and their expected width.
func writeThumbnails(
	ctx context.Context,
	cfg *config.Config,
	inputPath string,
	info *ffprobe.VideoInfo,
	store *frame.Store,
	sourceFrames, storeFrames []int,
	outputDir string,
) ([]string, int, error) {
	var frames []*frame.Frame
	switch {
	case len(storeFrames) == 0:
	case store.Metadata().Width == info.Width:
		for _, i := range storeFrames {
			frames = append(frames, store.At(i))
		}
	default:
		var err error
		frames, err = ffmpeg.ExtractFrames(ctx, inputPath, info, sourceFrames, true)
		if err != nil {
			return nil, 0, err
		}
	}

	paths, err := thumbnail.Write(outputDir, frames, thumbnail.Options{
		Quality: cfg.JPEGQuality,
		Width:   cfg.ThumbnailWidth,
	})
	if err != nil {
		return nil, 0, err
	}

	width := info.Width
	if len(frames) > 0 {
		width = frames[0].Width
	}
	if cfg.ThumbnailWidth > 0 && cfg.ThumbnailWidth < width {
		width = cfg.ThumbnailWidth
	}
	return paths, width, nil
}

func runID(cfg *config.Config) string {
	if cfg.RunID != "" {
		return cfg.RunID
	}
	return uuid.NewString()
}

func formatDynamicRange(isHDR bool) string {
	if isHDR {
		return "HDR (tonemapped)"
	}
	return "SDR"
}

func formatPreset(p *config.Preset) string {
	if p == nil {
		return "Default"
	}
	return p.String()
}

// toReporterError maps a pipeline failure to a user-facing error.
func toReporterError(inputPath string, err error) reporter.ReporterError {
	re := reporter.ReporterError{
		Title:   "Extraction Error",
		Message: err.Error(),
		Context: fmt.Sprintf("File: %s", inputPath),
	}
	switch {
	case errors.IsKind(err, errors.KindVideoOpen):
		re.Title = "Video Error"
		re.Suggestion = "Check that the file is a readable video and that ffmpeg/ffprobe are installed"
	case errors.IsKind(err, errors.KindComments):
		re.Title = "Comments Error"
		re.Suggestion = "Provide a JSON array of {text, time, send_time} records or disable engagement"
	case errors.IsKind(err, errors.KindFFmpeg):
		re.Title = "Decode Error"
		re.Suggestion = "Check the run log for ffmpeg output"
	case errors.IsKind(err, errors.KindOutput):
		re.Title = "Output Error"
		re.Suggestion = "Check that the output directory is writable"
	}
	return re
}
