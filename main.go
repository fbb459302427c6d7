package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/df07/go-direct-raytracer/internal/config"
	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/loaders"
	"github.com/df07/go-direct-raytracer/pkg/output"
	"github.com/df07/go-direct-raytracer/pkg/postprocess"
	"github.com/df07/go-direct-raytracer/pkg/renderer"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

// scenesDir is searched for <name>.json when a scene name is not built in
const scenesDir = "scenes"

type options struct {
	scene   string
	output  string
	width   int
	height  int
	filters string
	workers int
	tile    int
	s3      bool
}

func main() {
	// Parse command line flags
	opts := options{}
	list, help := registerFlags(flag.CommandLine, &opts)
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Direct Lighting Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}
	if *list {
		printScenes()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := run(ctx, cfg, opts)
	if err != nil {
		slog.Error("render failed", "scene", opts.scene, "error", err)
		os.Exit(1)
	}
	slog.Info("render saved", "location", location)
}

// registerFlags binds the CLI flags to opts and returns the -list and -help
// switches
func registerFlags(fs *flag.FlagSet, opts *options) (list, help *bool) {
	fs.StringVar(&opts.scene, "scene", "default", "Built-in scene name or path to a JSON scene description")
	fs.StringVar(&opts.output, "o", "", "Output file (default output/<scene>/render_<timestamp>.png)")
	fs.IntVar(&opts.width, "width", 0, "Override image width")
	fs.IntVar(&opts.height, "height", 0, "Override image height")
	fs.StringVar(&opts.filters, "filters", "", "Post-processing chain, e.g. blur:1.5,grayscale,scale:0.5:0.5")
	fs.IntVar(&opts.workers, "workers", -1, "Number of parallel workers (0 = CPU count, default from config)")
	fs.IntVar(&opts.tile, "tile", 0, "Tile size in pixels (default from config)")
	fs.BoolVar(&opts.s3, "s3", false, "Upload to the configured S3 bucket instead of writing a file")
	list = fs.Bool("list", false, "List built-in scenes and filters")
	help = fs.Bool("help", false, "Show help information")
	return list, help
}

// run renders one scene and writes it to the configured sink
func run(ctx context.Context, cfg *config.Config, opts options) (string, error) {
	s, err := createScene(opts.scene)
	if err != nil {
		return "", err
	}
	if opts.width > 0 {
		s.Width = opts.width
	}
	if opts.height > 0 {
		s.Height = opts.height
	}
	if err := s.Validate(); err != nil {
		return "", err
	}

	filters, err := postprocess.Parse(opts.filters)
	if err != nil {
		return "", err
	}

	renderConfig := renderer.Config{
		NumWorkers: cfg.Workers,
		TileSize:   cfg.TileSize,
		Logger:     core.NewSlogLogger(slog.Default(), "scene", opts.scene),
	}
	if opts.workers >= 0 {
		renderConfig.NumWorkers = opts.workers
	}
	if opts.tile > 0 {
		renderConfig.TileSize = opts.tile
	}

	img, stats, err := renderer.RenderContext(ctx, s, renderConfig)
	if err != nil {
		return "", err
	}
	slog.Info("render completed",
		"width", s.Width, "height", s.Height,
		"duration", stats.Duration,
		"hits", stats.Hits, "shadowRays", stats.ShadowRays, "occluded", stats.Occluded)

	var result image.Image = img.ToRGBA()
	if len(filters) > 0 {
		result = postprocess.Apply(result, filters...)
	}

	sink, name, err := chooseSink(cfg, opts, s)
	if err != nil {
		return "", err
	}
	return sink.Write(ctx, name, result)
}

// chooseSink picks where the image goes: an explicit -o path, S3 when -s3
// is set, otherwise a timestamped file under the output directory. A scene's
// own output path is used as given when nothing else is requested.
func chooseSink(cfg *config.Config, opts options, s *scene.Scene) (output.Sink, string, error) {
	name := output.TimestampName(sceneBaseName(opts.scene), time.Now())

	if opts.s3 {
		sink, err := output.NewS3Sink(cfg.S3())
		if err != nil {
			return nil, "", err
		}
		if opts.output != "" {
			name = opts.output
		}
		return sink, name, nil
	}

	switch {
	case opts.output != "":
		return output.NewFileSink("."), opts.output, nil
	case s.OutputImage != "":
		return output.NewFileSink("."), s.OutputImage, nil
	}
	return output.NewFileSink(cfg.OutputDir), name, nil
}

// createScene resolves a scene name: built-in scenes first, then a JSON
// description by path or under scenes/
func createScene(name string) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty scene name", scene.ErrUnknownScene)
	}

	s, err := scene.Lookup(name)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, scene.ErrUnknownScene) {
		return nil, err
	}

	path, ok := loaders.FindScenePath(scenesDir, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q is neither built in nor a scene file", scene.ErrUnknownScene, name)
	}
	return loaders.LoadScene(path)
}

// sceneBaseName is the output subdirectory for a scene: the name itself
// for built-ins, the file name without extension for scene files
func sceneBaseName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printScenes() {
	fmt.Println("Available scenes:")
	for _, info := range scene.List() {
		fmt.Printf("  %-10s %s (%dx%d)\n", info.ID, info.Description, info.Width, info.Height)
	}
	fmt.Println()
	if names, err := loaders.ListScenes(scenesDir); err == nil && len(names) > 0 {
		fmt.Println()
		fmt.Printf("Scene files in %s/:\n", scenesDir)
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
	}
	fmt.Println()
	fmt.Println("Any other path to a JSON scene description also works.")
	fmt.Println()
	fmt.Println("Filters:")
	fmt.Printf("  %s\n", strings.Join(postprocess.Names(), ", "))
}
