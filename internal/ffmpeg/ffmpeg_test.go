package ffmpeg

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/five82/hecate/internal/ffprobe"
)

func TestVideoFilterChain(t *testing.T) {
	tests := []struct {
		name  string
		build func() string
		want  string
	}{
		{
			name:  "empty chain",
			build: func() string { return NewVideoFilterChain().Build() },
			want:  "",
		},
		{
			name:  "scale",
			build: func() string { return NewVideoFilterChain().AddScale(320, 180).Build() },
			want:  "scale=320:180:flags=area",
		},
		{
			name:  "select frames",
			build: func() string { return NewVideoFilterChain().AddSelect([]int{3, 40}).Build() },
			want:  `select='eq(n\,3)+eq(n\,40)'`,
		},
		{
			name: "tonemap then scale",
			build: func() string {
				return NewVideoFilterChain().AddTonemap(true).AddScale(640, 360).Build()
			},
			want: tonemapFilter + ",scale=640:360:flags=area",
		},
		{
			name: "empty filters ignored",
			build: func() string {
				return NewVideoFilterChain().
					AddTonemap(false).
					AddScale(0, 0).
					AddSelect(nil).
					AddSelect([]int{3}).
					Build()
			},
			want: `select='eq(n\,3)'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build()
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		srcW, srcH, width int
		wantW, wantH      int
	}{
		{1920, 1080, 0, 1920, 1080},
		{1920, 1080, 320, 320, 180},
		{1920, 1080, 4000, 1920, 1080},
		{1440, 1080, 321, 321, 240},
		{1000, 3, 10, 10, 2},
	}
	for _, tt := range tests {
		w, h := ScaledSize(tt.srcW, tt.srcH, tt.width)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("ScaledSize(%d, %d, %d) = %dx%d, want %dx%d", tt.srcW, tt.srcH, tt.width, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestBuildDecodeArgs(t *testing.T) {
	args := BuildDecodeArgs("in.mkv", "scale=2:2")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-i in.mkv", "-vf scale=2:2", "-pix_fmt rgb24", "-f rawvideo", "-fps_mode passthrough"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("last arg = %q, want pipe:1", args[len(args)-1])
	}
	if strings.Contains(strings.Join(BuildDecodeArgs("in.mkv", ""), " "), "-vf") {
		t.Error("empty filter should not add -vf")
	}
}

func TestUniqueSorted(t *testing.T) {
	if got := uniqueSorted([]int{9, 2, 9, 4, 2}); !reflect.DeepEqual(got, []int{2, 4, 9}) {
		t.Errorf("uniqueSorted() = %v", got)
	}
}

// makeClip renders a short lossless test clip with ffmpeg.
func makeClip(t *testing.T, frames int) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	path := filepath.Join(t.TempDir(), "clip.mkv")
	cmd := exec.Command("ffmpeg", "-v", "error", "-f", "lavfi", "-i", "testsrc=size=64x48:rate=10",
		"-frames:v", strconv.Itoa(frames), "-c:v", "ffv1", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot render test clip: %v: %s", err, out)
	}
	return path
}

func TestDecoderReadsAllFrames(t *testing.T) {
	path := makeClip(t, 12)
	ctx := context.Background()
	info, err := ffprobe.Probe(ctx, path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	dec, err := NewDecoder(ctx, path, info, DecodeOptions{Width: 32})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	defer dec.Close()

	meta := dec.Metadata()
	if meta.Width != 32 || meta.Height != 24 {
		t.Fatalf("decoded size %dx%d, want 32x24", meta.Width, meta.Height)
	}
	for {
		f, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if len(f.Pix) != 32*24*3 {
			t.Fatalf("frame %d has %d bytes", f.Index, len(f.Pix))
		}
	}
	if dec.Decoded() != 12 {
		t.Errorf("Decoded() = %d, want 12", dec.Decoded())
	}
}

func TestExtractFrames(t *testing.T) {
	path := makeClip(t, 10)
	ctx := context.Background()
	info, err := ffprobe.Probe(ctx, path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	frames, err := ExtractFrames(ctx, path, info, []int{7, 2, 7}, false)
	if err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}
	if len(frames) != 3 || frames[0].Index != 7 || frames[1].Index != 2 || frames[2] != frames[0] {
		t.Fatalf("unexpected frames order")
	}
	if frames[0].Width != 64 || frames[0].Height != 48 {
		t.Errorf("frame size %dx%d, want native 64x48", frames[0].Width, frames[0].Height)
	}
}
