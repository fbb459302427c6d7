package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/df07/go-direct-raytracer/pkg/output"
)

// Prefix is prepended to every environment variable name
const Prefix = "RAYTRACER"

// Config holds the settings shared by the CLI and the web server, read from
// RAYTRACER_* environment variables
type Config struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	Workers   int    `envconfig:"WORKERS" default:"0"`
	TileSize  int    `envconfig:"TILE_SIZE" default:"32"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`
	ScenesDir string `envconfig:"SCENES_DIR" default:"scenes"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	MaxWidth  int    `envconfig:"MAX_WIDTH" default:"4096"`
	MaxHeight int    `envconfig:"MAX_HEIGHT" default:"4096"`

	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Prefix    string `envconfig:"S3_PREFIX"`
}

// Load reads the configuration from RAYTRACER_* environment variables,
// after loading any .env files given (".env" when none are). Missing .env
// files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// S3 returns the S3 connection settings
func (c *Config) S3() output.S3Config {
	return output.S3Config{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Prefix:    c.S3Prefix,
	}
}

// Level returns the configured log level
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
