package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidPreset indicates an unknown preset name was provided.
	ErrInvalidPreset = errors.New("invalid preset")

	// ErrInvalidThumbnailCount indicates a thumbnail count outside the valid range.
	ErrInvalidThumbnailCount = errors.New("thumbnail count out of range")

	// ErrInvalidFrameStep indicates a frame step below 1.
	ErrInvalidFrameStep = errors.New("frame step out of range")

	// ErrInvalidWindow indicates an inverted or negative time window.
	ErrInvalidWindow = errors.New("time window invalid")

	// ErrInvalidWeight indicates a negative engagement weight.
	ErrInvalidWeight = errors.New("engagement weight out of range")

	// ErrInvalidShotLength indicates a minimum shot length below 1.
	ErrInvalidShotLength = errors.New("minimum shot length out of range")

	// ErrInvalidRatio indicates a filter ratio outside 0-1.
	ErrInvalidRatio = errors.New("filter ratio out of range")

	// ErrInvalidDescriptor indicates non-positive descriptor dimensions.
	ErrInvalidDescriptor = errors.New("descriptor configuration invalid")

	// ErrInvalidClustering indicates non-positive clustering limits.
	ErrInvalidClustering = errors.New("clustering configuration invalid")

	// ErrInvalidJPEGQuality indicates a JPEG quality outside 1-100.
	ErrInvalidJPEGQuality = errors.New("JPEG quality out of range")

	// ErrInvalidWidth indicates a negative scaling width.
	ErrInvalidWidth = errors.New("width out of range")
)
