package imaging

import (
	"math"

	"github.com/five82/hecate/internal/frame"
)

// HSVPlanes converts f to 8-bit HSV planes: H in [0, 180), S and V in [0, 255].
func HSVPlanes(f *frame.Frame) (hue, sat, val *Gray) {
	n := f.Width * f.Height
	hue, sat, val = NewGray(f.Width, f.Height), NewGray(f.Width, f.Height), NewGray(f.Width, f.Height)
	for i := 0; i < n; i++ {
		r, g, b := float64(f.Pix[i*3]), float64(f.Pix[i*3+1]), float64(f.Pix[i*3+2])
		v := math.Max(r, math.Max(g, b))
		mn := math.Min(r, math.Min(g, b))
		diff := v - mn

		var s, h float64
		if v > 0 {
			s = 255 * diff / v
		}
		if diff > 0 {
			switch v {
			case r:
				h = 60 * (g - b) / diff
			case g:
				h = 120 + 60*(b-r)/diff
			default:
				h = 240 + 60*(r-g)/diff
			}
			if h < 0 {
				h += 360
			}
		}

		hv := math.Round(h / 2)
		if hv >= 180 {
			hv -= 180
		}
		hue.Pix[i] = uint8(hv)
		sat.Pix[i] = uint8(math.Round(s))
		val.Pix[i] = uint8(v)
	}
	return hue, sat, val
}
