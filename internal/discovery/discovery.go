// Package discovery provides file discovery for batch extraction.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/util"
)

// DiscoveryResult contains the results of file discovery with metadata.
type DiscoveryResult struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles finds video files in the given directory.
// Returns files sorted alphabetically by filename.
func FindVideoFiles(inputDir string) ([]string, error) {
	result, err := scan(inputDir)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// FindVideoFilesWithLogging finds video files and logs discovery progress.
// Logs the first 5 files found plus a count summary.
func FindVideoFilesWithLogging(inputDir string, log zerolog.Logger) (*DiscoveryResult, error) {
	result, err := scan(inputDir)
	if err != nil {
		return nil, err
	}
	logDiscoveredFiles(result, log)
	return result, nil
}

func scan(inputDir string) (*DiscoveryResult, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("directory does not exist: %s", inputDir), err)
	}
	if !info.IsDir() {
		return nil, errors.NewPathError(fmt.Sprintf("%s is not a directory", inputDir))
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("cannot read directory %s", inputDir), err)
	}

	result := &DiscoveryResult{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Skip hidden files
		if strings.HasPrefix(name, ".") {
			continue
		}

		fullPath := filepath.Join(inputDir, name)
		if util.IsVideoFile(fullPath) {
			result.Files = append(result.Files, fullPath)
		} else {
			result.SkippedCount++
		}
	}

	if len(result.Files) == 0 {
		return nil, errors.NewNoFilesFoundError(inputDir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(result.Files[i])) < strings.ToLower(filepath.Base(result.Files[j]))
	})
	return result, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *DiscoveryResult, log zerolog.Logger) {
	files := result.Files
	log.Info().Int("files", len(files)).Int("skipped", result.SkippedCount).Msg("found video files")

	maxToLog := min(5, len(files))
	for i := 0; i < maxToLog; i++ {
		log.Debug().Str("file", filepath.Base(files[i])).Msg("discovered")
	}

	if len(files) > 5 {
		log.Debug().Int("more", len(files)-5).Msg("additional files not listed")
	}
}
