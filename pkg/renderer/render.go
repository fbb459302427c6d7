package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

// DefaultTileSize is the tile edge length used when Config.TileSize is unset
const DefaultTileSize = 32

// ErrTilePanic wraps a panic raised while rendering a tile
var ErrTilePanic = errors.New("renderer: panic while rendering tile")

// Config controls how a render is split up and reported
type Config struct {
	NumWorkers int              // Number of parallel workers (0 = use CPU count)
	TileSize   int              // Size of each square tile (0 = DefaultTileSize)
	OnTile     func(TileResult) // Called after each tile completes, never concurrently
	Logger     core.Logger      // Progress output (nil = silent)
}

// TileResult describes a finished tile for progress callbacks
type TileResult struct {
	Tile       Tile
	TileImage  *image.RGBA // Pixels of just this tile, in image coordinates
	Stats      RenderStats // Counters for this tile alone
	TileNumber int         // Completion order (1-based)
	TotalTiles int
}

// Render traces every pixel of the scene in parallel and returns the image
func Render(s *scene.Scene) *Image {
	img, _, _ := RenderContext(context.Background(), s, Config{})
	return img
}

// RenderContext renders the scene tile by tile on a bounded pool of
// goroutines. Each pixel is written by exactly one tile, so the image is the
// same for any worker count or tile size. It returns ctx.Err() when the
// context is cancelled before all tiles are done, and an ErrTilePanic error
// when a tile panics (e.g. an unvalidated scene with a nil object).
func RenderContext(ctx context.Context, s *scene.Scene, config Config) (*Image, RenderStats, error) {
	start := time.Now()

	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	logger := config.Logger
	if logger == nil {
		logger = core.NopLogger{}
	}

	tracer := NewTracer(s)
	img := NewImage(s.Width, s.Height)
	tiles := NewTileGrid(s.Width, s.Height, config.TileSize)

	logger.Printf("Rendering %dx%d in %d tiles (using %d workers)...\n",
		s.Width, s.Height, len(tiles), numWorkers)

	var (
		mu        sync.Mutex
		stats     RenderStats
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for _, tile := range tiles {
		if gctx.Err() != nil {
			break
		}
		tile := tile
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w %d %v: %v", ErrTilePanic, tile.ID, tile.Bounds, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}

			tileStats := tracer.renderTile(tile.Bounds, img)

			mu.Lock()
			defer mu.Unlock()
			stats.merge(tileStats)
			completed++
			if config.OnTile != nil {
				config.OnTile(TileResult{
					Tile:       tile,
					TileImage:  img.SubImage(tile.Bounds),
					Stats:      tileStats,
					TileNumber: completed,
					TotalTiles: len(tiles),
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	stats.Duration = time.Since(start)
	logger.Printf("Rendered %d pixels (%d hits, %d shadow rays, %d occluded) in %v\n",
		stats.TotalPixels, stats.Hits, stats.ShadowRays, stats.Occluded, stats.Duration)

	return img, stats, nil
}

// renderTile traces the pixels within bounds into img. Tiles never overlap,
// so concurrent calls write disjoint parts of img.Pix.
func (t *Tracer) renderTile(bounds image.Rectangle, img *Image) RenderStats {
	stats := RenderStats{Tiles: 1}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, t.tracePixel(x, y, &stats))
		}
	}
	return stats
}
