package validation

import (
	"image"
	_ "image/jpeg"
	"os"

	"github.com/five82/hecate/internal/errors"
)

// DefaultAnalyzer implements ImageAnalyzer by decoding image headers.
type DefaultAnalyzer struct{}

// NewDefaultAnalyzer creates a new DefaultAnalyzer instance.
func NewDefaultAnalyzer() *DefaultAnalyzer {
	return &DefaultAnalyzer{}
}

// GetImageProperties decodes only the image header at path.
func (a *DefaultAnalyzer) GetImageProperties(path string) (*ImageProperties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("failed to open thumbnail "+path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, errors.NewOutputError("failed to decode thumbnail "+path, err)
	}
	return &ImageProperties{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
