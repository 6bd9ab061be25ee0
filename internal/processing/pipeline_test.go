package processing

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/five82/hecate/internal/config"
	"github.com/five82/hecate/internal/engagement"
	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/frame"
	"github.com/five82/hecate/internal/reporter"
	"github.com/five82/hecate/internal/selector"
)

// stageRecorder records stage lifecycle events in order.
type stageRecorder struct {
	reporter.NullReporter
	started  []string
	complete []string
}

func (r *stageRecorder) StageStarted(info reporter.StageInfo) {
	r.started = append(r.started, info.Stage)
}

func (r *stageRecorder) StageComplete(outcome reporter.StageOutcome) {
	r.complete = append(r.complete, outcome.Stage)
}

// textured returns a frame filled with seeded noise so that edge and
// quality measures see structure.
func textured(w, h int, seed int64) *frame.Frame {
	f := frame.NewFrame(0, w, h)
	rng := rand.New(rand.NewSource(seed))
	for i := range f.Pix {
		f.Pix[i] = uint8(64 + rng.Intn(128))
	}
	return f
}

func testStore(frames []*frame.Frame) *frame.Store {
	for i, f := range frames {
		f.Index = i
	}
	return frame.NewStore(frame.VideoMetadata{Width: frames[0].Width, Height: frames[0].Height, FPS: 25}, frames)
}

func testConfig() *config.Config {
	cfg := config.NewConfig("in.mp4", "out", "")
	cfg.Workers = 2
	cfg.MinShotLen = 10
	return cfg
}

func checkSelection(t *testing.T, a *Analysis, n, count int) {
	t.Helper()
	if len(a.Selection.Frames) == 0 || len(a.Selection.Frames) > count {
		t.Fatalf("selected %d frames, want 1..%d", len(a.Selection.Frames), count)
	}
	seen := make(map[int]bool)
	for _, f := range a.Selection.Frames {
		if f < 0 || f >= n {
			t.Errorf("frame %d out of range [0, %d)", f, n)
		}
		if seen[f] {
			t.Errorf("frame %d selected twice", f)
		}
		seen[f] = true
	}
}

func TestAnalyzeStaticVideo(t *testing.T) {
	base := textured(32, 24, 1)
	frames := make([]*frame.Frame, 100)
	for i := range frames {
		f := frame.NewFrame(i, base.Width, base.Height)
		copy(f.Pix, base.Pix)
		frames[i] = f
	}

	rec := &stageRecorder{}
	a, err := Analyze(context.Background(), testConfig(), testStore(frames), nil, rec)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	checkSelection(t, a, 100, 5)
	if a.Selection.Regime == selector.RegimeNone {
		t.Error("a non-empty video must select something")
	}
	if len(a.Diff) != 100 || len(a.ECR) != 100 || len(a.Infos) != 100 {
		t.Errorf("signal lengths = %d/%d/%d, want 100", len(a.Diff), len(a.ECR), len(a.Infos))
	}
	for i, d := range a.Diff {
		if d != 0 {
			t.Fatalf("diff[%d] = %g, want 0 for identical frames", i, d)
		}
	}
	if a.Engagement != nil {
		t.Error("engagement should be nil without comments")
	}

	want := strings.Join([]string{
		StageMetrics, StageTransitions, StageShots, StageFeatures,
		StageSubShots, StageEngagement, StageSelection,
	}, ",")
	if got := strings.Join(rec.started, ","); got != want {
		t.Errorf("stages started = %s, want %s", got, want)
	}
	if got := strings.Join(rec.complete, ","); got != want {
		t.Errorf("stages completed = %s, want %s", got, want)
	}
}

func TestAnalyzeDarkOpening(t *testing.T) {
	// Frames 0-4 are near black, 5-9 share one textured picture.
	base := textured(32, 24, 1)
	frames := make([]*frame.Frame, 10)
	for i := range frames {
		f := frame.NewFrame(i, base.Width, base.Height)
		if i < 5 {
			for p := range f.Pix {
				f.Pix[p] = 3
			}
		} else {
			copy(f.Pix, base.Pix)
		}
		frames[i] = f
	}

	cfg := testConfig()
	cfg.MinShotLen = 2
	cfg.InvalidDropWindow = 0
	a, err := Analyze(context.Background(), cfg, testStore(frames), nil, nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// floor(10 * 0.15) frames fit in the dark slice.
	dark := frame.CountFlag(a.Infos, frame.FlagDark)
	if dark != 1 || a.Stats.Quality.Dark != 1 {
		t.Errorf("DARK frames = %d (report %d), want 1", dark, a.Stats.Quality.Dark)
	}
	for i := 5; i < 10; i++ {
		if a.Infos[i].Flags.Has(frame.FlagDark) {
			t.Errorf("frame %d is not dark but flagged %q", i, a.Infos[i].Flags)
		}
	}

	if a.Selection.Regime != selector.RegimeShots {
		t.Fatalf("regime = %s, want shots", a.Selection.Regime)
	}
	if len(a.Selection.Frames) != a.SubShotCount() || len(a.Selection.Frames) > cfg.ThumbnailCount {
		t.Errorf("selected %v from %d sub-shots", a.Selection.Frames, a.SubShotCount())
	}
	if len(a.Selection.Frames) != 2 {
		t.Fatalf("selected %v, want one frame per scene", a.Selection.Frames)
	}
	if f := a.Selection.Frames[0]; f < 1 || f > 3 {
		t.Errorf("first pick %d, want one of the valid dark frames 1-3", f)
	}
	if f := a.Selection.Frames[1]; f < 7 || f > 9 {
		t.Errorf("second pick %d, want one of the textured frames 7-9", f)
	}
	for _, f := range a.Selection.Frames {
		if !a.Infos[f].Valid {
			t.Errorf("selected frame %d is invalid (%q)", f, a.Infos[f].Flags)
		}
	}
}

func TestAnalyzeTwoScenes(t *testing.T) {
	var frames []*frame.Frame
	for i := 0; i < 120; i++ {
		seed := int64(1)
		if i >= 60 {
			seed = 2
		}
		frames = append(frames, textured(32, 24, seed))
	}

	a, err := Analyze(context.Background(), testConfig(), testStore(frames), nil, nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	checkSelection(t, a, 120, 5)

	for _, s := range a.Shots {
		if s.Len() <= 10 {
			t.Errorf("shot %d-%d is not longer than the minimum", s.Start, s.End)
		}
	}
	if a.Diff[60] <= a.Diff[30] {
		t.Errorf("diff at the cut (%g) should exceed diff inside a scene (%g)", a.Diff[60], a.Diff[30])
	}
}

func TestAnalyzeWithComments(t *testing.T) {
	frames := make([]*frame.Frame, 50)
	for i := range frames {
		frames[i] = textured(16, 16, 7)
	}
	comments := []engagement.Comment{{Text: "wow", Time: 1.0}}

	a, err := Analyze(context.Background(), testConfig(), testStore(frames), comments, nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(a.Engagement) != 50 {
		t.Fatalf("engagement length = %d, want 50", len(a.Engagement))
	}
	for i, e := range a.Engagement {
		if e < 0 || e > 1 {
			t.Errorf("engagement[%d] = %g, want within [0, 1]", i, e)
		}
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := []*frame.Frame{textured(8, 8, 1), textured(8, 8, 2)}
	_, err := Analyze(ctx, testConfig(), testStore(frames), nil, nil)
	if !errors.IsCancelled(err) {
		t.Errorf("Analyze() error = %v, want cancelled", err)
	}
}

func TestBatchSummary(t *testing.T) {
	results := []ExtractResult{
		{Filename: "a.mp4", Thumbnails: []string{"1.jpg", "2.jpg"}, Regime: "shots", ValidationPassed: true},
		{Filename: "b.mp4", Thumbnails: []string{"1.jpg"}, Regime: "fallback"},
	}
	s := batchSummary(results, 3, time.Minute)

	if s.SuccessfulCount != 2 || s.TotalFiles != 3 || s.TotalThumbnails != 3 {
		t.Errorf("summary counts = %+v", s)
	}
	if s.ValidationPassedCount != 1 || s.ValidationFailedCount != 1 {
		t.Errorf("validation counts = %d/%d, want 1/1", s.ValidationPassedCount, s.ValidationFailedCount)
	}
	if len(s.FileResults) != 2 || s.FileResults[1].Regime != "fallback" {
		t.Errorf("file results = %+v", s.FileResults)
	}
}

func TestToReporterError(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{errors.NewVideoOpenError("a.mp4", nil), "Video Error"},
		{errors.NewCommentsError("a.chat.json", nil), "Comments Error"},
		{errors.NewOutputError("write", nil), "Output Error"},
		{errors.NewAnalysisError("metrics stage failed", nil), "Extraction Error"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			re := toReporterError("a.mp4", tt.err)
			if re.Title != tt.title {
				t.Errorf("Title = %q, want %q", re.Title, tt.title)
			}
			if !strings.Contains(re.Context, "a.mp4") {
				t.Errorf("Context = %q, want file name", re.Context)
			}
		})
	}
}

func TestLoadCommentsExplicitMissing(t *testing.T) {
	cfg := testConfig()
	cfg.CommentsPath = t.TempDir() + "/missing.chat.json"

	_, _, err := loadComments(cfg, "video.mp4")
	if !errors.IsKind(err, errors.KindComments) {
		t.Errorf("loadComments() error = %v, want comments error", err)
	}
}

func TestLoadCommentsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EngagementEnabled = false
	cfg.CommentsPath = "/does/not/exist.json"

	path, comments, err := loadComments(cfg, "video.mp4")
	if err != nil || path != "" || comments != nil {
		t.Errorf("loadComments() = %q, %v, %v; want engagement off", path, comments, err)
	}
}

func TestProcessVideosMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.OutputDir = t.TempDir()

	results, err := ProcessVideos(context.Background(), cfg, []string{cfg.OutputDir + "/missing.mp4"}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing input")
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want none", len(results))
	}
}
