package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// VideoExtensions is the list of supported video file extensions.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".wmv":  true,
	".ts":   true,
	".avi":  true,
	".mp4":  true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
	".mov":  true,
	".webm": true,
	".flv":  true,
	".m2ts": true,
	".ogv":  true,
	".vob":  true,
}

// CommentsSuffix is appended to a video stem to find its comment file.
const CommentsSuffix = ".chat.json"

// SharedCommentsName is the directory-wide comment file fallback.
const SharedCommentsName = "chat.json"

// IsVideoFile checks if the given path is a valid video file.
func IsVideoFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	return VideoExtensions[ext]
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// EnsureDirectoryWritable checks that path is an existing directory that
// accepts new files.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	f, err := os.CreateTemp(path, ".hecate_write_test_*")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", path, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ResolveCommentsPath finds the comment file for a video. An explicit
// override wins; otherwise <stem>.chat.json and then chat.json beside the
// video are tried. The second return is false when nothing was found.
func ResolveCommentsPath(videoPath, override string) (string, bool) {
	if override != "" {
		return override, true
	}
	dir := filepath.Dir(videoPath)
	for _, name := range []string{GetFileStem(videoPath) + CommentsSuffix, SharedCommentsName} {
		candidate := filepath.Join(dir, name)
		if FileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
