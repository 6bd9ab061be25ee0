package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/hecate/internal/cluster"
	"github.com/five82/hecate/internal/config"
	"github.com/five82/hecate/internal/engagement"
	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/feature"
	"github.com/five82/hecate/internal/frame"
	"github.com/five82/hecate/internal/logging"
	"github.com/five82/hecate/internal/metrics"
	"github.com/five82/hecate/internal/reporter"
	"github.com/five82/hecate/internal/selector"
	"github.com/five82/hecate/internal/shot"
	"github.com/five82/hecate/internal/subshot"
	"github.com/five82/hecate/internal/transition"
	"github.com/five82/hecate/internal/worker"
)

// Stage names reported through the Reporter and the run log.
const (
	StageDecode      = "decode"
	StageMetrics     = "metrics"
	StageTransitions = "transitions"
	StageShots       = "shots"
	StageFeatures    = "features"
	StageSubShots    = "sub-shots"
	StageEngagement  = "engagement"
	StageSelection   = "selection"
	StageOutput      = "output"
)

// Stats counts the frames each stage rejected.
type Stats struct {
	Quality    metrics.FilterReport
	Transition transition.Report
	Shots      shot.Report
	SubShots   subshot.Report
}

// Analysis holds the artifacts of one analysis run over a frame store.
type Analysis struct {
	Meta       frame.VideoMetadata
	Infos      []frame.Info
	Diff       []float64
	ECR        []float64
	Engagement []float64
	Shots      []frame.ShotRange
	Selection  selector.Result
	Stats      Stats
}

// ValidCount returns the number of frames still valid after analysis.
func (a *Analysis) ValidCount() int {
	return frame.CountValid(a.Infos)
}

// SubShotCount returns the number of sub-shots across all shots.
func (a *Analysis) SubShotCount() int {
	n := 0
	for _, s := range a.Shots {
		n += len(s.SubShots)
	}
	return n
}

// pipeline threads one run's state through the stages. Each stage reads
// the artifacts of the previous ones and adds its own.
type pipeline struct {
	cfg      *config.Config
	rep      reporter.Reporter
	log      zerolog.Logger
	store    *frame.Store
	comments []engagement.Comment
	desc     *feature.Descriptors
	out      *Analysis
}

// stageFunc runs a stage body. progress is nil for stages without per-frame
// work. It returns the stage summary and the number of frames it rejected.
type stageFunc func(ctx context.Context, progress func(worker.Progress)) (string, int, error)

// Analyze runs every analysis stage over store, from frame metrics to
// selection. comments is nil when engagement scoring is off.
func Analyze(ctx context.Context, cfg *config.Config, store *frame.Store, comments []engagement.Comment, rep reporter.Reporter) (*Analysis, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	p := &pipeline{
		cfg:      cfg,
		rep:      rep,
		log:      logging.Component("pipeline"),
		store:    store,
		comments: comments,
		out:      &Analysis{Meta: store.Metadata()},
	}

	stages := []struct {
		name     string
		perFrame bool
		run      stageFunc
	}{
		{StageMetrics, true, p.metrics},
		{StageTransitions, true, p.transitions},
		{StageShots, false, p.shots},
		{StageFeatures, true, p.features},
		{StageSubShots, false, p.subShots},
		{StageEngagement, false, p.engagement},
		{StageSelection, false, p.selection},
	}
	for _, s := range stages {
		if err := p.runStage(ctx, s.name, s.perFrame, s.run); err != nil {
			return nil, err
		}
	}
	return p.out, nil
}

func (p *pipeline) runStage(ctx context.Context, name string, perFrame bool, run stageFunc) error {
	if ctx.Err() != nil {
		return errors.NewCancelledError()
	}

	total := 0
	var progress func(worker.Progress)
	if perFrame {
		total = p.store.Len()
		progress = stageProgress(p.rep, name)
	}
	p.rep.StageStarted(reporter.StageInfo{Stage: name, Total: total})

	done := logging.Stage(p.log, name)
	start := time.Now()
	msg, rejected, err := run(ctx, progress)
	done()
	if err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.NewAnalysisError(name+" stage failed", err)
	}

	p.log.Info().Str("stage", name).Int("rejected", rejected).Int("valid", frame.CountValid(p.out.Infos)).Msg(msg)
	p.rep.StageComplete(reporter.StageOutcome{
		Stage:    name,
		Message:  msg,
		Elapsed:  time.Since(start),
		Rejected: rejected,
	})
	return nil
}

// stageProgress adapts worker progress to reporter updates.
func stageProgress(rep reporter.Reporter, stage string) func(worker.Progress) {
	return func(pr worker.Progress) {
		rep.StageProgress(reporter.StageProgress{
			Stage:   stage,
			Current: pr.Done,
			Total:   pr.Total,
			Percent: reporter.Percent(pr.Done, pr.Total),
		})
	}
}

func (p *pipeline) metrics(ctx context.Context, progress func(worker.Progress)) (string, int, error) {
	infos, err := metrics.Compute(ctx, p.store, p.cfg.WorkerCount(), progress)
	if err != nil {
		return "", 0, err
	}
	p.out.Infos = infos

	rep := metrics.FilterLowQuality(infos, metrics.QualityParams{
		MaxRatio:         p.cfg.QualityFilterRatio,
		DarkThreshold:    p.cfg.DarkThreshold,
		BlurThreshold:    p.cfg.BlurThreshold,
		UniformThreshold: p.cfg.UniformThreshold,
	})
	p.out.Stats.Quality = rep
	return fmt.Sprintf("%d dark, %d blurry, %d uniform", rep.Dark, rep.Blur, rep.Uniform),
		len(infos) - frame.CountValid(infos), nil
}

func (p *pipeline) transitions(ctx context.Context, progress func(worker.Progress)) (string, int, error) {
	before := frame.CountValid(p.out.Infos)

	diff, err := transition.Diff(ctx, p.store, p.cfg.WorkerCount())
	if err != nil {
		return "", 0, err
	}
	ecr, err := transition.ECR(ctx, p.store, p.cfg.WorkerCount(), progress)
	if err != nil {
		return "", 0, err
	}
	p.out.Diff, p.out.ECR = diff, ecr

	rep := transition.Filter(p.out.Infos, diff, ecr, transition.Params{
		MaxRatio:     p.cfg.TransitionFilterRatio,
		CutThreshold: p.cfg.CutThreshold,
		ECRThreshold: p.cfg.ECRThreshold,
	})
	p.out.Stats.Transition = rep
	return fmt.Sprintf("%d cuts, %d edge changes", rep.Cuts, rep.ECR),
		before - frame.CountValid(p.out.Infos), nil
}

func (p *pipeline) shots(context.Context, func(worker.Progress)) (string, int, error) {
	window := shot.WindowFrames(p.cfg.InvalidDropWindow, p.out.Meta.FPS)
	shots, rep := shot.Build(p.out.Infos, p.out.Diff, p.cfg.MinShotLen, window)
	p.out.Shots = shots
	p.out.Stats.Shots = rep
	return fmt.Sprintf("%d shots (%d neighbours, %d splits, %d short)", len(shots), rep.Neighbors, rep.GFL, rep.Short),
		rep.Neighbors + rep.GFL + rep.Short, nil
}

func (p *pipeline) features(ctx context.Context, progress func(worker.Progress)) (string, int, error) {
	params := feature.Params{
		Levels:          p.cfg.PyramidLevels,
		ColorBins:       p.cfg.ColorBins,
		OrientationBins: p.cfg.EdgeOrientationBins,
		MagnitudeBins:   p.cfg.EdgeMagnitudeBins,
	}
	desc, err := feature.Extract(ctx, p.store, p.out.Infos, params, p.cfg.WorkerCount(), progress)
	if err != nil {
		return "", 0, err
	}
	p.desc = desc
	return fmt.Sprintf("%d-dimensional descriptors for %d frames", desc.Dim(), frame.CountValid(p.out.Infos)), 0, nil
}

func (p *pipeline) clusterParams() cluster.Params {
	return cluster.Params{
		Attempts:      p.cfg.ClusterAttempts,
		MaxIterations: p.cfg.ClusterMaxIterations,
		Epsilon:       p.cfg.ClusterEpsilon,
		Seed:          p.cfg.Seed,
	}
}

func (p *pipeline) subShots(ctx context.Context, _ func(worker.Progress)) (string, int, error) {
	rep, err := subshot.Reduce(p.out.Shots, p.out.Infos, p.desc, p.out.Diff, p.clusterParams())
	if err != nil {
		return "", 0, err
	}
	p.out.Stats.SubShots = rep
	return fmt.Sprintf("%d sub-shots from %d clusters", rep.SubShots, rep.Clusters), rep.Redundant, nil
}

func (p *pipeline) engagement(context.Context, func(worker.Progress)) (string, int, error) {
	if p.comments == nil {
		return "disabled", 0, nil
	}
	w := engagement.Window{Lo: p.cfg.EngagementWindow.Lo, Hi: p.cfg.EngagementWindow.Hi}
	p.out.Engagement = engagement.Score(p.out.Meta, p.comments, w)
	return fmt.Sprintf("%d comments scored", len(p.comments)), 0, nil
}

func (p *pipeline) selection(context.Context, func(worker.Progress)) (string, int, error) {
	res, err := selector.Select(p.out.Shots, p.desc, p.out.Diff, p.out.Engagement, selector.Params{
		Count:      p.cfg.ThumbnailCount,
		Clusters:   p.cfg.SelectionClusters(),
		ChatWeight: p.cfg.EngagementWeight,
		Cluster:    p.clusterParams(),
	})
	if err != nil {
		return "", 0, err
	}
	p.out.Selection = res
	return fmt.Sprintf("%d frames selected (%s)", len(res.Frames), res.Regime), 0, nil
}
