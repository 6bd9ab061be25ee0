package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirectoryWritable(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDirectoryWritable(tmpDir); err != nil {
		t.Errorf("Expected no error for writable dir, got %v", err)
	}

	if err := EnsureDirectoryWritable("/nonexistent/directory/path"); err == nil {
		t.Error("Expected error for non-existent directory")
	}

	tmpFile := filepath.Join(tmpDir, "testfile")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDirectoryWritable(tmpFile); err == nil {
		t.Error("Expected error for file instead of directory")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("probe file left behind: %d entries", len(entries))
	}
}

func TestGetFileStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/videos/stream.mp4", "stream"},
		{"clip.tar.mkv", "clip.tar"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := GetFileStem(tt.path); got != tt.want {
				t.Errorf("GetFileStem(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "a.MP4")
	text := filepath.Join(dir, "a.txt")
	for _, p := range []string{video, text} {
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if !IsVideoFile(video) {
		t.Error("upper-case extension should be accepted")
	}
	if IsVideoFile(text) {
		t.Error("text file accepted as video")
	}
	if IsVideoFile(dir) {
		t.Error("directory accepted as video")
	}
}

func TestResolveCommentsPath(t *testing.T) {
	write := func(t *testing.T, path string) {
		t.Helper()
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("override", func(t *testing.T) {
		got, ok := ResolveCommentsPath("/v/a.mp4", "/elsewhere/c.json")
		if !ok || got != "/elsewhere/c.json" {
			t.Errorf("got (%q, %v)", got, ok)
		}
	})

	t.Run("stem file wins", func(t *testing.T) {
		dir := t.TempDir()
		stem := filepath.Join(dir, "a"+CommentsSuffix)
		write(t, stem)
		write(t, filepath.Join(dir, SharedCommentsName))
		got, ok := ResolveCommentsPath(filepath.Join(dir, "a.mp4"), "")
		if !ok || got != stem {
			t.Errorf("got (%q, %v), want %q", got, ok, stem)
		}
	})

	t.Run("shared fallback", func(t *testing.T) {
		dir := t.TempDir()
		shared := filepath.Join(dir, SharedCommentsName)
		write(t, shared)
		got, ok := ResolveCommentsPath(filepath.Join(dir, "b.mp4"), "")
		if !ok || got != shared {
			t.Errorf("got (%q, %v), want %q", got, ok, shared)
		}
	})

	t.Run("none", func(t *testing.T) {
		if got, ok := ResolveCommentsPath(filepath.Join(t.TempDir(), "c.mp4"), ""); ok {
			t.Errorf("found %q in an empty directory", got)
		}
	})
}
