// Package thumbnail writes the selected frames as JPEG files.
package thumbnail

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nfnt/resize"

	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/frame"
	"github.com/five82/hecate/internal/util"
)

// Options controls the written images.
type Options struct {
	// Quality is the JPEG quality, 1-100.
	Quality int
	// Width scales images down to this width; 0 keeps the frame size.
	Width int
}

// OutputDir returns <root>/<video stem>_thumbnails.
func OutputDir(root, videoPath string) string {
	return filepath.Join(root, util.GetFileStem(videoPath)+"_thumbnails")
}

// PrepareDir removes dir and creates it empty.
func PrepareDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.NewOutputError("failed to clear "+dir, err)
	}
	if err := util.EnsureDirectory(dir); err != nil {
		return errors.NewOutputError("failed to create "+dir, err)
	}
	return nil
}

// Write recreates dir and writes frames[i] as "<i>.jpg" in selection order.
// It returns the written paths.
func Write(dir string, frames []*frame.Frame, opts Options) ([]string, error) {
	if err := PrepareDir(dir); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(frames))
	for rank, f := range frames {
		path := filepath.Join(dir, strconv.Itoa(rank)+".jpg")
		if err := writeJPEG(path, ToImage(f), opts); err != nil {
			return paths, errors.NewOutputError(fmt.Sprintf("failed to write thumbnail %d", rank), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ToImage copies f into an RGBA image.
func ToImage(f *frame.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

func writeJPEG(path string, img image.Image, opts Options) error {
	if opts.Width > 0 && opts.Width < img.Bounds().Dx() {
		img = resize.Resize(uint(opts.Width), 0, img, resize.Lanczos3)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
