package output

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// FileSink writes images below a directory, choosing the format from the
// file extension
type FileSink struct {
	Dir string
}

// NewFileSink creates a sink rooted at dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Write encodes img to Dir/name, creating parent directories as needed.
// Absolute names ignore Dir.
func (f *FileSink) Write(ctx context.Context, name string, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := name
	if !filepath.IsAbs(name) {
		filename = filepath.Join(f.Dir, filepath.FromSlash(name))
	}

	if _, err := imaging.FormatFromFilename(filename); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := imaging.Save(img, filename); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return filename, nil
}
