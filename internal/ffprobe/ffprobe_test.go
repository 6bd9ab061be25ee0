package ffprobe

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/five82/hecate/internal/errors"
)

// loadTestData loads a JSON fixture from the testdata directory.
func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func TestParseFFprobeOutput_MalformedJSON(t *testing.T) {
	_, err := parseFFprobeOutput([]byte(`{"streams": [`))
	if !errors.IsKind(err, errors.KindJSONParse) {
		t.Errorf("parseFFprobeOutput() error = %v, want JSON parse error", err)
	}
}

func TestExtractVideoInfo(t *testing.T) {
	tests := []struct {
		name       string
		fixture    string
		wantWidth  int
		wantHeight int
		wantFPS    float64
		wantFrames int
		wantCodec  string
		wantHDR    bool
	}{
		{"1080p SDR with nb_frames", "video_1080p_sdr.json", 1920, 1080, 24000.0 / 1001, 2889, "h264", false},
		{"4K HDR from container duration", "video_4k_hdr_pq.json", 3840, 2160, 25, 1501, "hevc", true},
		{"avg_frame_rate fallback", "video_vfr_no_rate.json", 1280, 720, 30, 300, "vp9", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe, err := parseFFprobeOutput(loadTestData(t, tt.fixture))
			if err != nil {
				t.Fatalf("parseFFprobeOutput() error = %v", err)
			}
			info, err := extractVideoInfo(probe)
			if err != nil {
				t.Fatalf("extractVideoInfo() error = %v", err)
			}
			if info.Width != tt.wantWidth || info.Height != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", info.Width, info.Height, tt.wantWidth, tt.wantHeight)
			}
			if math.Abs(info.FPS-tt.wantFPS) > 1e-9 {
				t.Errorf("FPS = %g, want %g", info.FPS, tt.wantFPS)
			}
			if info.Frames != tt.wantFrames {
				t.Errorf("Frames = %d, want %d", info.Frames, tt.wantFrames)
			}
			if info.CodecName != tt.wantCodec {
				t.Errorf("CodecName = %q, want %q", info.CodecName, tt.wantCodec)
			}
			if info.HDR.IsHDR != tt.wantHDR {
				t.Errorf("IsHDR = %v, want %v", info.HDR.IsHDR, tt.wantHDR)
			}
		})
	}
}

func TestExtractVideoInfo_NoVideoStream(t *testing.T) {
	probe, err := parseFFprobeOutput(loadTestData(t, "audio_only.json"))
	if err != nil {
		t.Fatalf("parseFFprobeOutput() error = %v", err)
	}
	if _, err := extractVideoInfo(probe); !errors.IsKind(err, errors.KindVideoInfo) {
		t.Errorf("extractVideoInfo() error = %v, want video info error", err)
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"25/1", 25, false},
		{"30000/1001", 30000.0 / 1001, false},
		{"50", 50, false},
		{"0/0", 0, true},
		{"", 0, true},
		{"abc/1", 0, true},
		{"30/x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrameRate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFrameRate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFrameRate(%q) = %g, want %g", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectHDR(t *testing.T) {
	tests := []struct {
		name      string
		primaries string
		transfer  string
		matrix    string
		wantHDR   bool
	}{
		{"SDR BT709", "bt709", "bt709", "bt709", false},
		{"HDR PQ with BT2020", "bt2020", "smpte2084", "bt2020nc", true},
		{"HDR HLG", "bt2020", "arib-std-b67", "bt2020nc", true},
		{"PQ transfer only", "bt709", "smpte2084", "bt709", true},
		{"BT2020 matrix only", "bt709", "bt709", "bt2020nc", true},
		{"Empty values", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectHDR(tt.primaries, tt.transfer, tt.matrix)
			if got != tt.wantHDR {
				t.Errorf("detectHDR(%q, %q, %q) = %v, want %v",
					tt.primaries, tt.transfer, tt.matrix, got, tt.wantHDR)
			}
		})
	}
}

func TestProbeMissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	_, err := Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.IsKind(err, errors.KindVideoOpen) {
		t.Errorf("Probe() error = %v, want video open error", err)
	}
}
