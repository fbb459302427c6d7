package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/df07/go-direct-raytracer/internal/config"
	"github.com/df07/go-direct-raytracer/pkg/output"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"sphere scene", "sphere", false},
		{"shadow scene", "shadow", false},
		{"triangles scene", "triangles", false},
		{"spotlight scene", "spotlight", false},

		// Scene files by name
		{"spheres file", "spheres", false},
		{"pyramid file", "pyramid", false},

		// Scene files by path
		{"direct JSON path", "scenes/spheres.json", false},
		{"direct JSON path 2", "scenes/pyramid.json", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"invalid JSON path", "scenes/nonexistent.json", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createScene(tt.sceneType)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if !errors.Is(err, scene.ErrUnknownScene) {
					t.Errorf("Expected ErrUnknownScene for '%s', got %v", tt.sceneType, err)
				}
				if s != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s.Width <= 0 || s.Height <= 0 {
				t.Errorf("Scene resolution should be positive, got %dx%d", s.Width, s.Height)
			}
			if len(s.Objects) == 0 {
				t.Errorf("Scene '%s' should have objects", tt.sceneType)
			}
		})
	}
}

func TestCreateScene_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"objects": [{"type": "sphere", "radius": 0}]}`), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := createScene(path)
	if !errors.Is(err, scene.ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken.json") {
		t.Errorf("Expected file name in error, got %v", err)
	}
}

func TestSceneBaseName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"built-in", "default", "default"},
		{"file path", "scenes/spheres.json", "spheres"},
		{"nested path", "scenes/subdir/my-scene.json", "my-scene"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sceneBaseName(tt.input); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestChooseSink(t *testing.T) {
	cfg := &config.Config{OutputDir: "renders"}
	plain := scene.Default()
	withOutput := scene.Default()
	withOutput.OutputImage = "example.png"

	tests := []struct {
		name       string
		opts       options
		s          *scene.Scene
		expectName string
		expectDir  string
	}{
		{"explicit output", options{scene: "default", output: "out/x.png"}, withOutput, "out/x.png", "."},
		{"scene output used as given", options{scene: "sphere"}, withOutput, "example.png", "."},
		{"timestamped", options{scene: "scenes/spheres.json"}, plain, "spheres/render_", "renders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, name, err := chooseSink(cfg, tt.opts, tt.s)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.HasPrefix(name, tt.expectName) {
				t.Errorf("Expected name starting with '%s', got '%s'", tt.expectName, name)
			}
			fileSink, ok := sink.(*output.FileSink)
			if !ok {
				t.Fatalf("Expected file sink, got %T", sink)
			}
			if fileSink.Dir != tt.expectDir {
				t.Errorf("Expected directory '%s', got '%s'", tt.expectDir, fileSink.Dir)
			}
		})
	}
}

func TestChooseSink_S3RequiresBucket(t *testing.T) {
	_, _, err := chooseSink(&config.Config{}, options{scene: "default", s3: true}, scene.Default())
	if err == nil {
		t.Error("Expected error for S3 output without a bucket")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{OutputDir: dir, TileSize: 8}
	opts := options{
		scene:   "shadow",
		output:  filepath.Join(dir, "shadow.png"),
		width:   32,
		height:  24,
		filters: "grayscale,scale:0.5:0.5",
		workers: 2,
	}

	location, err := run(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if location != opts.output {
		t.Errorf("Expected location %s, got %s", opts.output, location)
	}

	img, err := imaging.Open(location)
	if err != nil {
		t.Fatalf("Expected readable output, got %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Errorf("Expected 16x12 after scaling, got %v", img.Bounds())
	}
}

func TestRun_Errors(t *testing.T) {
	cfg := &config.Config{OutputDir: t.TempDir()}

	tests := []struct {
		name string
		opts options
	}{
		{"unknown scene", options{scene: "nonexistent", workers: -1}},
		{"bad filter", options{scene: "sphere", filters: "emboss", workers: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(context.Background(), cfg, tt.opts); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestRegisterFlags(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectWidth  int
		expectHeight int
		expectHelp   bool
		expectError  bool
	}{
		{"size overrides", []string{"-width", "320", "-height", "240"}, 320, 240, false, false},
		{"help", []string{"-help"}, 0, 0, true, false},
		{"short h asks for usage", []string{"-h"}, 0, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			opts := options{}
			_, help := registerFlags(fs, &opts)

			err := fs.Parse(tt.args)
			if tt.expectError {
				if !errors.Is(err, flag.ErrHelp) {
					t.Errorf("Expected flag.ErrHelp, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if opts.width != tt.expectWidth || opts.height != tt.expectHeight {
				t.Errorf("Expected %dx%d, got %dx%d", tt.expectWidth, tt.expectHeight, opts.width, opts.height)
			}
			if *help != tt.expectHelp {
				t.Errorf("Expected help %v, got %v", tt.expectHelp, *help)
			}
			if opts.workers != -1 || opts.scene != "default" {
				t.Errorf("Expected default workers -1 and scene default, got %d and %q", opts.workers, opts.scene)
			}
		})
	}
}
