// Package util provides utility functions for formatting and common operations.
package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	KiB = 1024
	MiB = KiB * 1024
	GiB = MiB * 1024
)

// FormatBytes formats bytes with appropriate binary units (B, KiB, MiB, GiB).
func FormatBytes(bytes uint64) string {
	bf := float64(bytes)
	switch {
	case bf >= GiB:
		return fmt.Sprintf("%.2f GiB", bf/GiB)
	case bf >= MiB:
		return fmt.Sprintf("%.2f MiB", bf/MiB)
	case bf >= KiB:
		return fmt.Sprintf("%.2f KiB", bf/KiB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDuration formats seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	if seconds < 0 || seconds != seconds { // NaN check
		return "??:??:??"
	}
	return FormatDurationFromSecs(int64(seconds))
}

// FormatDurationFromSecs formats seconds as HH:MM:SS from an int64.
func FormatDurationFromSecs(secs int64) string {
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatFrameRate formats a frame rate with up to three decimals, dropping
// trailing zeros ("25 fps", "23.976 fps").
func FormatFrameRate(fps float64) string {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return "unknown"
	}
	s := fmt.Sprintf("%.3f", fps)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s + " fps"
}

// FormatResolution formats a frame size as WIDTHxHEIGHT.
func FormatResolution(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// FormatFrameList joins frame indices for display, eliding the middle of
// long lists.
func FormatFrameList(frames []int, limit int) string {
	if len(frames) == 0 {
		return "none"
	}
	if limit <= 0 || len(frames) <= limit {
		return joinInts(frames)
	}
	head := limit / 2
	tail := limit - head
	return joinInts(frames[:head]) + ", ..., " + joinInts(frames[len(frames)-tail:])
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
