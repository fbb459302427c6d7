package loaders

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-direct-raytracer/pkg/scene"
)

// SceneExt is the extension of scene description files
const SceneExt = ".json"

// LoadScene reads a JSON scene description file and builds the scene
func LoadScene(filename string) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ReadScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// ReadScene builds a scene from a JSON description
func ReadScene(r io.Reader) (*scene.Scene, error) {
	desc, err := scene.DecodeDescription(r)
	if err != nil {
		return nil, err
	}
	return desc.Build()
}

// FindScene returns the path of <dir>/<name>.json if it exists. Names with
// path separators or a leading dot never resolve, so a request can't reach
// outside dir.
func FindScene(dir, name string) (string, bool) {
	if dir == "" || name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return existingFile(filepath.Join(dir, name+SceneExt))
}

// FindScenePath resolves a CLI scene argument: an existing file path first,
// then <dir>/<name>.json for bare names
func FindScenePath(dir, name string) (string, bool) {
	if path, ok := existingFile(name); ok {
		return path, true
	}
	if filepath.Ext(name) != "" {
		return "", false
	}
	return FindScene(dir, name)
}

// ListScenes returns the names of the scene files in dir, sorted. A missing
// directory has no scenes.
func ListScenes(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+SceneExt))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(match), SceneExt))
	}
	return names, nil
}

func existingFile(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
