// Package validation checks the artifacts of a finished extraction run.
package validation

// ImageAnalyzer inspects written thumbnails.
// This interface allows validation logic to be tested without real files.
type ImageAnalyzer interface {
	// GetImageProperties returns the format and size of the image at path.
	GetImageProperties(path string) (*ImageProperties, error)
}

// ImageProperties contains the thumbnail properties needed for validation.
type ImageProperties struct {
	Format string
	Width  int
	Height int
}
