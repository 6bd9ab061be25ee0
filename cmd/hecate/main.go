// Package main provides the CLI entry point for Hecate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/hecate/internal/config"
	"github.com/five82/hecate/internal/discovery"
	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/logging"
	"github.com/five82/hecate/internal/processing"
	"github.com/five82/hecate/internal/reporter"
	"github.com/five82/hecate/internal/util"
)

const (
	appName    = "hecate"
	appVersion = "0.1.0"

	// exitCancelled follows the shell convention for SIGINT.
	exitCancelled = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if errors.IsCancelled(err) {
			os.Exit(exitCancelled)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Thumbnail extraction for long-form video",
		Long:          "Hecate picks representative, still, well-exposed frames from videos and writes them as JPEG thumbnails.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s version %s\n", appName, appVersion)
		},
	}
}

// extractArgs holds the parsed arguments for the extract command.
type extractArgs struct {
	outputDir  string
	logDir     string
	configFile string
	comments   string
	preset     string
	eventsFile string
	verbose    bool
	noLog      bool
	jsonOutput bool
	// Selection
	count            int
	frameStep        int
	minShotLen       int
	dropWindow       float64
	engagementWeight float64
	noEngagement     bool
	seed             int64
	// Processing
	workers       int
	analysisWidth int
	responsive    bool
	// Output
	quality        int
	thumbnailWidth int
	dump           bool
}

func newExtractCmd() *cobra.Command {
	var ea extractArgs

	cmd := &cobra.Command{
		Use:   "extract <input>",
		Short: "Extract thumbnails from a video file or a directory of videos",
		Long: `Extract thumbnails from a video file or every video in a directory.

Thumbnails are written to <output>/<video stem>_thumbnails/ as 0.jpg, 1.jpg, ...
in rank order. Viewer comments are read from <stem>.chat.json or chat.json next
to the video unless --comments is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeExtract(cmd, args[0], ea)
		},
	}

	bindExtractFlags(cmd, &ea)
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func bindExtractFlags(cmd *cobra.Command, ea *extractArgs) {
	f := cmd.Flags()
	f.StringVarP(&ea.outputDir, "output", "o", "", "Output root directory (required)")
	f.StringVarP(&ea.logDir, "log-dir", "l", "", "Log directory (defaults to OUTPUT/logs)")
	f.StringVar(&ea.configFile, "config", "", "YAML configuration file")
	f.StringVarP(&ea.comments, "comments", "c", "", "Comment file for a single input video")
	f.StringVar(&ea.preset, "preset", "", "Analysis preset (fast, balanced, thorough)")
	f.StringVar(&ea.eventsFile, "events", "", "Also write NDJSON progress events to this file")
	f.BoolVarP(&ea.verbose, "verbose", "v", false, "Enable verbose output")
	f.BoolVar(&ea.noLog, "no-log", false, "Disable log file creation")
	f.BoolVar(&ea.jsonOutput, "json", false, "Write NDJSON progress events to stdout instead of text")

	f.IntVarP(&ea.count, "count", "n", config.DefaultThumbnailCount, "Number of thumbnails per video")
	f.IntVar(&ea.frameStep, "frame-step", config.DefaultFrameStep, "Analyse every Nth decoded frame")
	f.IntVar(&ea.minShotLen, "min-shot-len", config.DefaultMinShotLen, "Frames a shot must exceed to be kept")
	f.Float64Var(&ea.dropWindow, "drop-window", config.DefaultInvalidDropWindow, "Seconds rejected around filtered frames")
	f.Float64Var(&ea.engagementWeight, "engagement-weight", config.DefaultEngagementWeight, "Weight of comment engagement in frame scores")
	f.BoolVar(&ea.noEngagement, "no-engagement", false, "Ignore viewer comments")
	f.Int64Var(&ea.seed, "seed", config.DefaultSeed, "Clustering seed")

	f.IntVar(&ea.workers, "workers", 0, "Per-frame analysis workers (default: all CPUs)")
	f.IntVar(&ea.analysisWidth, "analysis-width", 0, "Decode width for analysis (0 keeps native width)")
	f.BoolVar(&ea.responsive, "responsive", false, "Run at lower CPU priority")

	f.IntVarP(&ea.quality, "quality", "q", config.DefaultJPEGQuality, "JPEG quality (1-100)")
	f.IntVar(&ea.thumbnailWidth, "thumbnail-width", 0, "Downscale thumbnails to this width (0 keeps native width)")
	f.BoolVar(&ea.dump, "dump", false, "Write the per-frame analysis next to the thumbnails")
}

func executeExtract(cmd *cobra.Command, input string, ea extractArgs) error {
	// Resolve input path
	inputPath, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("input path does not exist: %s", inputPath)
	}
	if inputInfo.IsDir() && ea.comments != "" {
		return fmt.Errorf("--comments requires a single input file")
	}

	outputDir, err := filepath.Abs(ea.outputDir)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := util.EnsureDirectory(outputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := util.EnsureDirectoryWritable(outputDir); err != nil {
		return err
	}

	logDir := ea.logDir
	if logDir == "" {
		logDir = filepath.Join(outputDir, "logs")
	}

	cfg, err := buildConfig(cmd, inputPath, outputDir, logDir, ea)
	if err != nil {
		return err
	}

	// Setup file logging
	logger, err := logging.Setup(logDir, ea.verbose, ea.noLog)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
		cfg.RunID = logger.RunID()
	}

	// Discover files to process
	var filesToProcess []string
	if inputInfo.IsDir() {
		result, err := discovery.FindVideoFilesWithLogging(inputPath, logger.Zerolog())
		if err != nil {
			return err
		}
		filesToProcess = result.Files
	} else {
		filesToProcess = []string{inputPath}
		logger.Info("Processing single file: %s", inputPath)
	}

	if yml, err := cfg.Marshal(); err == nil {
		logger.Debug("Effective configuration:\n%s", yml)
	}

	rep, closeEvents, err := buildReporter(ea)
	if err != nil {
		return err
	}
	defer closeEvents()

	_, err = processing.ProcessVideos(cmd.Context(), cfg, filesToProcess, rep)
	return err
}

// buildConfig layers defaults, the config file, the preset and explicitly
// set flags, in that order.
func buildConfig(cmd *cobra.Command, inputPath, outputDir, logDir string, ea extractArgs) (*config.Config, error) {
	cfg := config.NewConfig(inputPath, outputDir, logDir)

	if ea.configFile != "" {
		if err := config.LoadFile(ea.configFile, cfg); err != nil {
			return nil, errors.NewConfigError("cannot load configuration", err)
		}
	}

	if ea.preset != "" {
		preset, err := config.ParsePreset(ea.preset)
		if err != nil {
			return nil, err
		}
		cfg.ApplyPreset(preset)
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("comments", func() { cfg.CommentsPath = ea.comments })
	set("count", func() { cfg.ThumbnailCount = ea.count })
	set("frame-step", func() { cfg.FrameStep = ea.frameStep })
	set("min-shot-len", func() { cfg.MinShotLen = ea.minShotLen })
	set("drop-window", func() { cfg.InvalidDropWindow = ea.dropWindow })
	set("engagement-weight", func() { cfg.EngagementWeight = ea.engagementWeight })
	set("no-engagement", func() { cfg.EngagementEnabled = !ea.noEngagement })
	set("seed", func() { cfg.Seed = ea.seed })
	set("workers", func() { cfg.Workers = ea.workers })
	set("analysis-width", func() { cfg.AnalysisWidth = ea.analysisWidth })
	set("responsive", func() { cfg.Responsive = ea.responsive })
	set("quality", func() { cfg.JPEGQuality = ea.quality })
	set("thumbnail-width", func() { cfg.ThumbnailWidth = ea.thumbnailWidth })
	set("dump", func() { cfg.DumpAnalysis = ea.dump })

	// Paths given on the command line always win over the file.
	cfg.InputPath, cfg.OutputDir, cfg.LogDir = inputPath, outputDir, logDir

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// buildReporter returns the reporter for the run and a func closing any
// events file it opened.
func buildReporter(ea extractArgs) (reporter.Reporter, func(), error) {
	var rep reporter.Reporter = reporter.NewTerminalReporter()
	if ea.jsonOutput {
		rep = reporter.NewJSONReporter()
	}
	if ea.eventsFile == "" {
		return rep, func() {}, nil
	}

	f, err := os.Create(ea.eventsFile)
	if err != nil {
		return nil, nil, errors.NewIOError("cannot create events file "+ea.eventsFile, err)
	}
	composite := reporter.NewCompositeReporter(rep, reporter.NewJSONReporterWithWriter(f))
	return composite, func() { _ = f.Close() }, nil
}
