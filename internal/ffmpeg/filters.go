package ffmpeg

import (
	"fmt"
	"strings"
)

// tonemapFilter maps HDR input to BT.709 SDR before RGB conversion.
const tonemapFilter = "zscale=t=linear:npl=100,format=gbrpf32le,zscale=p=bt709," +
	"tonemap=tonemap=hable:desat=0,zscale=t=bt709:m=bt709:r=tv,format=yuv420p"

// VideoFilterChain builds video filter chains.
type VideoFilterChain struct {
	filters []string
}

// NewVideoFilterChain creates a new empty filter chain.
func NewVideoFilterChain() *VideoFilterChain {
	return &VideoFilterChain{}
}

// AddTonemap adds the HDR to SDR tonemapping filters when hdr is set.
func (c *VideoFilterChain) AddTonemap(hdr bool) *VideoFilterChain {
	if hdr {
		c.filters = append(c.filters, tonemapFilter)
	}
	return c
}

// AddScale adds a scale filter to width x height. Zero sizes are ignored.
func (c *VideoFilterChain) AddScale(width, height int) *VideoFilterChain {
	if width > 0 && height > 0 {
		c.filters = append(c.filters, fmt.Sprintf("scale=%d:%d:flags=area", width, height))
	}
	return c
}

// AddSelect adds a select filter keeping only the given source frame numbers.
func (c *VideoFilterChain) AddSelect(frames []int) *VideoFilterChain {
	if len(frames) == 0 {
		return c
	}
	terms := make([]string, len(frames))
	for i, n := range frames {
		terms[i] = fmt.Sprintf(`eq(n\,%d)`, n)
	}
	c.filters = append(c.filters, "select='"+strings.Join(terms, "+")+"'")
	return c
}

// Build builds the filter chain into a single filter string.
// Returns empty string if no filters are present.
func (c *VideoFilterChain) Build() string {
	if len(c.filters) == 0 {
		return ""
	}
	return strings.Join(c.filters, ",")
}

// ScaledSize returns the output size for a target width, keeping the aspect
// ratio and rounding the height to an even number. A width of 0 or one not
// smaller than the source keeps the source size.
func ScaledSize(srcWidth, srcHeight, width int) (int, int) {
	if width <= 0 || width >= srcWidth || srcWidth <= 0 {
		return srcWidth, srcHeight
	}
	h := int(float64(srcHeight)*float64(width)/float64(srcWidth)/2+0.5) * 2
	return width, max(h, 2)
}
