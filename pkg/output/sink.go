// Package output writes rendered images to their destination: a local
// directory or an S3-compatible bucket.
package output

import (
	"context"
	"fmt"
	"image"
	"path"
	"time"
)

// Sink stores an encoded image under a relative name and reports where it
// went
type Sink interface {
	Write(ctx context.Context, name string, img image.Image) (string, error)
}

// TimestampName returns the conventional name for a render of the given
// scene: <scene>/render_<timestamp>.png
func TimestampName(sceneName string, t time.Time) string {
	return path.Join(sceneName, fmt.Sprintf("render_%s.png", t.Format("20060102_150405")))
}
