package selector

import (
	"reflect"
	"testing"

	"github.com/five82/hecate/internal/cluster"
	"github.com/five82/hecate/internal/feature"
	"github.com/five82/hecate/internal/frame"
)

var clusterParams = cluster.Params{Attempts: 3, MaxIterations: 1000, Epsilon: 1e-4, Seed: 1}

func params(count int) Params {
	return Params{Count: count, Clusters: min(max(count, 5), 30), ChatWeight: 1, Cluster: clusterParams}
}

func TestScorer(t *testing.T) {
	sc := Scorer{Diff: []float64{0.2, 0.4}, Engagement: []float64{1, 0.5}, ChatWeight: 0.8}
	if got := sc.Score(0); got != 0.2 {
		t.Errorf("Score(0) = %g, want 0.2", got)
	}
	if got, want := sc.Score(1), 0.4+0.8*0.5; got != want {
		t.Errorf("Score(1) = %g, want %g", got, want)
	}
	if got := (Scorer{Diff: []float64{0.3}, ChatWeight: 1}).Score(0); got != 1.3 {
		t.Errorf("nil engagement Score = %g, want 1.3", got)
	}
}

func TestSelectFallback(t *testing.T) {
	tests := []struct {
		name       string
		diff       []float64
		engagement []float64
		want       []int
		regime     Regime
	}{
		{"empty video", nil, nil, nil, RegimeNone},
		{"stillest frame", []float64{0.5, 0.2, 0.3}, nil, []int{1}, RegimeFallback},
		{"engagement breaks ties", []float64{0.1, 0.1, 0.1}, []float64{0, 1, 0.5}, []int{1}, RegimeFallback},
		{"earliest on ties", []float64{0, 0, 0}, nil, []int{0}, RegimeFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Select(nil, feature.NewDescriptors(len(tt.diff), 1), tt.diff, tt.engagement, params(5))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(res.Frames, tt.want) || res.Regime != tt.regime || res.Candidates != 0 {
				t.Errorf("Select() = %+v, want frames %v regime %s", res, tt.want, tt.regime)
			}
		})
	}
}

func TestSelectSingleCandidate(t *testing.T) {
	shot := frame.NewShotRange(10, 60)
	shot.AddSubShot(10, 60, 33)
	res, err := Select([]frame.ShotRange{shot}, feature.NewDescriptors(70, 1), make([]float64, 70), nil, params(5))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Frames, []int{33}) || res.Regime != RegimeShots {
		t.Errorf("Select() = %+v, want [33] via shots", res)
	}
}

func TestSelectLongestPerShot(t *testing.T) {
	a := frame.NewShotRange(0, 49)
	a.AddSubShot(0, 9, 5)
	a.AddSubShot(10, 49, 20) // 40
	b := frame.NewShotRange(100, 159)
	b.AddSubShot(100, 159, 130) // 60
	c := frame.NewShotRange(200, 239)
	c.AddSubShot(200, 239, 210) // 40, after a on the tie

	res, err := Select([]frame.ShotRange{a, b, c}, feature.NewDescriptors(240, 1), make([]float64, 240), nil, params(5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Candidates != 4 || res.Regime != RegimeShots {
		t.Fatalf("Select() = %+v", res)
	}
	if want := []int{130, 20, 210}; !reflect.DeepEqual(res.Frames, want) {
		t.Errorf("Frames = %v, want %v", res.Frames, want)
	}
}

// clusteredFixture builds seven representatives in five well separated
// looks. Cluster weights: B=71, A=70, C=50, E=20, D=5.
func clusteredFixture() ([]frame.ShotRange, *feature.Descriptors, []float64) {
	const (
		lookA = 0
		lookB = 1000
		lookC = 2000
		lookD = 3000
		lookE = 4000
	)
	desc := feature.NewDescriptors(700, 1)
	diff := make([]float64, 700)
	for i := range diff {
		diff[i] = 1
	}

	s0 := frame.NewShotRange(0, 100)
	s0.AddSubShot(0, 39, 10)   // A, 40
	s0.AddSubShot(40, 100, 50) // B, 61
	s1 := frame.NewShotRange(200, 249)
	s1.AddSubShot(200, 249, 210) // C, 50
	s2 := frame.NewShotRange(300, 329)
	s2.AddSubShot(300, 329, 310) // A, 30
	s3 := frame.NewShotRange(400, 424)
	s3.AddSubShot(400, 404, 402) // D, 5
	s3.AddSubShot(405, 424, 410) // E, 20
	s4 := frame.NewShotRange(600, 619)
	s4.AddSubShot(600, 609, 605) // B, 10

	looks := map[int]float64{10: lookA, 50: lookB, 210: lookC, 310: lookA, 402: lookD, 410: lookE, 605: lookB}
	for i, v := range looks {
		desc.Row(i)[0] = v
	}

	diff[10], diff[310] = 0.5, 0.1
	diff[50], diff[605] = 0.05, 0.3
	return []frame.ShotRange{s0, s1, s2, s3, s4}, desc, diff
}

func TestSelectClustered(t *testing.T) {
	shots, desc, diff := clusteredFixture()

	tests := []struct {
		count int
		want  []int
	}{
		{5, []int{50, 310, 210, 410, 402}},
		{3, []int{50, 310, 210}},
	}
	for _, tt := range tests {
		res, err := Select(shots, desc, diff, nil, params(tt.count))
		if err != nil {
			t.Fatal(err)
		}
		if res.Regime != RegimeClustered || res.Candidates != 7 {
			t.Errorf("count %d: regime %s candidates %d", tt.count, res.Regime, res.Candidates)
		}
		if !reflect.DeepEqual(res.Frames, tt.want) {
			t.Errorf("count %d: Frames = %v, want %v", tt.count, res.Frames, tt.want)
		}
	}
}

func TestSelectNeverExceedsCount(t *testing.T) {
	shots, desc, diff := clusteredFixture()
	for count := 1; count <= 8; count++ {
		res, err := Select(shots, desc, diff, nil, params(count))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Frames) > count || len(res.Frames) == 0 {
			t.Errorf("count %d: got %d frames", count, len(res.Frames))
		}
	}
}

func TestRegimeString(t *testing.T) {
	for r, want := range map[Regime]string{RegimeNone: "none", RegimeFallback: "fallback", RegimeShots: "shots", RegimeClustered: "clustered"} {
		if r.String() != want {
			t.Errorf("%d.String() = %q, want %q", r, r.String(), want)
		}
	}
}
