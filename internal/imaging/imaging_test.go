package imaging

import (
	"math"
	"testing"

	"github.com/five82/hecate/internal/frame"
)

func fill(w, h int, r, g, b uint8) *frame.Frame {
	f := frame.NewFrame(0, w, h)
	for i := 0; i < w*h; i++ {
		f.Pix[i*3], f.Pix[i*3+1], f.Pix[i*3+2] = r, g, b
	}
	return f
}

// square draws a bright square on a dark background.
func square(w, h, x0, y0, size int) *Gray {
	g := NewGray(w, h)
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			g.Pix[y*w+x] = 200
		}
	}
	return g
}

func TestReflect(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{2, 5, 2},
		{-1, 1, 0},
	}
	for _, tt := range tests {
		if got := reflect(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestLuma(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint8
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 255},
		{"red", 255, 0, 0, 76},
		{"green", 0, 255, 0, 150},
		{"blue", 0, 0, 255, 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Luma(fill(2, 2, tt.r, tt.g, tt.b))
			if g.Pix[0] != tt.want {
				t.Errorf("Luma = %d, want %d", g.Pix[0], tt.want)
			}
		})
	}
}

func TestGaussianBlurPreservesFlat(t *testing.T) {
	g := NewGray(5, 4)
	for i := range g.Pix {
		g.Pix[i] = 123
	}
	out := GaussianBlur3(g)
	for i, v := range out.Pix {
		if v != 123 {
			t.Fatalf("pixel %d = %d, want 123", i, v)
		}
	}
}

func TestGradientOnRamp(t *testing.T) {
	// Horizontal ramp: value = x.
	w, h := 6, 4
	src := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[y*w+x] = float64(x)
		}
	}

	tests := []struct {
		kernel Kernel
		want   float64
	}{
		{Sobel, 8},
		{Scharr, 32},
	}
	for _, tt := range tests {
		gx, gy := Gradient(src, w, h, tt.kernel)
		// Interior pixel: central difference 2 times kernel weight sum.
		if got := gx[1*w+2]; got != tt.want {
			t.Errorf("kernel %d gx = %g, want %g", tt.kernel, got, tt.want)
		}
		if got := gy[1*w+2]; got != 0 {
			t.Errorf("kernel %d gy = %g, want 0", tt.kernel, got)
		}
	}
}

func TestOrientationRange(t *testing.T) {
	gx := []float64{1, 0, -1, 0, 1, -1}
	gy := []float64{0, 1, 0, -1, 1, -1}
	want := []float64{0, 90, 0, 90, 45, 45}
	got := Orientation(gx, gy)
	for i := range want {
		d := math.Abs(got[i] - want[i])
		if d = math.Min(d, 180-d); d > 1e-9 {
			t.Errorf("Orientation[%d] = %g, want %g", i, got[i], want[i])
		}
		if got[i] < 0 || got[i] >= 180 {
			t.Errorf("Orientation[%d] = %g outside [0, 180)", i, got[i])
		}
	}
}

func TestHistogram(t *testing.T) {
	h := Histogram([]float64{0, 10, 127, 128, 255, 256, -1}, 2, 0, 256)
	if h[0] != 3 || h[1] != 2 {
		t.Errorf("Histogram = %v, want [3 2]", h)
	}
}

func TestPlaneHistogram(t *testing.T) {
	g := &Gray{Width: 4, Height: 1, Pix: []uint8{0, 1, 2, 255}}
	h := PlaneHistogram(g, 128)
	if h[0] != 2 || h[1] != 1 || h[127] != 1 {
		t.Errorf("unexpected bins: h[0]=%g h[1]=%g h[127]=%g", h[0], h[1], h[127])
	}
}

func TestL2Normalize(t *testing.T) {
	v := []float64{3, 4}
	L2Normalize(v)
	if math.Abs(v[0]-0.6) > 1e-12 || math.Abs(v[1]-0.8) > 1e-12 {
		t.Errorf("L2Normalize = %v, want [0.6 0.8]", v)
	}

	zero := []float64{0, 0}
	L2Normalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestOtsuBimodal(t *testing.T) {
	g := NewGray(10, 10)
	for i := range g.Pix {
		if i < 50 {
			g.Pix[i] = 20
		} else {
			g.Pix[i] = 220
		}
	}
	th := Otsu(g)
	if th < 20 || th >= 220 {
		t.Errorf("Otsu = %g, want within [20, 220)", th)
	}
}

func TestOtsuFlat(t *testing.T) {
	g := NewGray(4, 4)
	if th := Otsu(g); th != 0 {
		t.Errorf("Otsu on flat image = %g, want 0", th)
	}
}

func TestCannySquare(t *testing.T) {
	g := square(32, 32, 8, 8, 16)
	edges := Canny(g, 50, 60)

	if edges.Count() == 0 {
		t.Fatal("expected edges around the square")
	}
	// Far from the border nothing is set.
	if edges.Bits[2*32+2] || edges.Bits[16*32+16] {
		t.Error("edge set in flat region")
	}
	// Edges sit next to the square boundary.
	found := false
	for x := 6; x <= 9; x++ {
		if edges.Bits[16*32+x] {
			found = true
		}
	}
	if !found {
		t.Error("no edge near the left boundary of the square")
	}
}

func TestCannyFlat(t *testing.T) {
	g := NewGray(16, 16)
	if n := Canny(g, 0, 0).Count(); n != 0 {
		t.Errorf("flat image produced %d edge pixels", n)
	}
}

func TestDilateCross(t *testing.T) {
	m := NewMask(11, 11)
	m.Bits[5*11+5] = true
	d := m.DilateCross(2)

	// Arms of length 2 in four directions plus center.
	if got := d.Count(); got != 9 {
		t.Errorf("Count() = %d, want 9", got)
	}
	if !d.Bits[5*11+3] || !d.Bits[3*11+5] || !d.Bits[7*11+5] || !d.Bits[5*11+7] {
		t.Error("cross arm missing")
	}
	if d.Bits[4*11+4] {
		t.Error("diagonal pixel should not be set")
	}
	if m.IntersectCount(d) != 1 {
		t.Errorf("IntersectCount = %d, want 1", m.IntersectCount(d))
	}
}

func TestHSVPlanes(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		h, s, v uint8
	}{
		{"red", 255, 0, 0, 0, 255, 255},
		{"green", 0, 255, 0, 60, 255, 255},
		{"blue", 0, 0, 255, 120, 255, 255},
		{"gray", 128, 128, 128, 0, 0, 128},
		{"black", 0, 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := HSVPlanes(fill(1, 1, tt.r, tt.g, tt.b))
			if h.Pix[0] != tt.h || s.Pix[0] != tt.s || v.Pix[0] != tt.v {
				t.Errorf("HSV = (%d, %d, %d), want (%d, %d, %d)",
					h.Pix[0], s.Pix[0], v.Pix[0], tt.h, tt.s, tt.v)
			}
		})
	}
}

func TestCrop(t *testing.T) {
	g := NewGray(4, 4)
	for i := range g.Pix {
		g.Pix[i] = uint8(i)
	}
	c := g.Crop(1, 2, 2, 2)
	want := []uint8{9, 10, 13, 14}
	for i, v := range want {
		if c.Pix[i] != v {
			t.Errorf("Crop pix[%d] = %d, want %d", i, c.Pix[i], v)
		}
	}
}
