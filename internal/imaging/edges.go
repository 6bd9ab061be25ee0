package imaging

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Otsu returns the gray level that maximises the between-class variance of g.
func Otsu(g *Gray) float64 {
	hist := GrayHistogram(g)
	total := floats.Sum(hist)
	if total == 0 {
		return 0
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * c
	}

	var (
		wB, sumB float64
		best     float64
		bestT    int
	)
	for t, c := range hist {
		wB += c
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * c
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			bestT = t
		}
	}
	return float64(bestT)
}

// Mask is a binary image.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an empty mask.
func NewMask(w, h int) *Mask {
	return &Mask{Width: w, Height: h, Bits: make([]bool, w*h)}
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// IntersectCount returns the number of pixels set in both masks.
func (m *Mask) IntersectCount(other *Mask) int {
	n := 0
	for i, b := range m.Bits {
		if b && other.Bits[i] {
			n++
		}
	}
	return n
}

var (
	tan22 = math.Tan(22.5 * math.Pi / 180)
	tan67 = math.Tan(67.5 * math.Pi / 180)
)

// Canny detects edges with Sobel gradients, L1 magnitude, non-maximum
// suppression and hysteresis between low and high.
func Canny(g *Gray, low, high float64) *Mask {
	w, h := g.Width, g.Height
	gx, gy := Gradient(g.Float(1), w, h, Sobel)
	mag := make([]float64, w*h)
	for i := range mag {
		mag[i] = math.Abs(gx[i]) + math.Abs(gy[i])
	}

	at := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	var stack []int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}
			ax, ay := math.Abs(gx[i]), math.Abs(gy[i])
			var keep bool
			switch {
			case ay < ax*tan22:
				keep = m > at(x-1, y) && m >= at(x+1, y)
			case ay > ax*tan67:
				keep = m > at(x, y-1) && m >= at(x, y+1)
			case (gx[i] < 0) != (gy[i] < 0):
				keep = m > at(x+1, y-1) && m > at(x-1, y+1)
			default:
				keep = m > at(x-1, y-1) && m > at(x+1, y+1)
			}
			if !keep {
				continue
			}
			if m > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	edges := NewMask(w, h)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if edges.Bits[i] {
			continue
		}
		edges.Bits[i] = true
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] != none && !edges.Bits[j] {
					stack = append(stack, j)
				}
			}
		}
	}
	return edges
}

// DilateCross dilates m with a cross-shaped structuring element of the given radius.
func (m *Mask) DilateCross(radius int) *Mask {
	w, h := m.Width, m.Height
	out := NewMask(w, h)

	// Prefix sums per row and per column give O(1) window tests.
	rowSum := make([]int, w+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rowSum[x+1] = rowSum[x]
			if m.Bits[y*w+x] {
				rowSum[x+1]++
			}
		}
		for x := 0; x < w; x++ {
			lo, hi := max(x-radius, 0), min(x+radius, w-1)
			if rowSum[hi+1]-rowSum[lo] > 0 {
				out.Bits[y*w+x] = true
			}
		}
	}

	colSum := make([]int, h+1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			colSum[y+1] = colSum[y]
			if m.Bits[y*w+x] {
				colSum[y+1]++
			}
		}
		for y := 0; y < h; y++ {
			lo, hi := max(y-radius, 0), min(y+radius, h-1)
			if colSum[hi+1]-colSum[lo] > 0 {
				out.Bits[y*w+x] = true
			}
		}
	}
	return out
}
