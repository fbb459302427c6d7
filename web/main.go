package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-direct-raytracer/internal/config"
	"github.com/df07/go-direct-raytracer/pkg/output"
	"github.com/df07/go-direct-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Port to serve on (default from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Port = *port
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	webServer := server.NewServer(cfg)
	if cfg.S3Bucket != "" {
		sink, err := output.NewS3Sink(cfg.S3())
		if err != nil {
			slog.Error("failed to create s3 sink", "error", err)
			os.Exit(1)
		}
		webServer.WithSink(sink)
		slog.Info("saving renders to s3", "bucket", cfg.S3Bucket)
	} else {
		webServer.WithSink(output.NewFileSink(cfg.OutputDir))
		slog.Info("saving renders to disk", "dir", cfg.OutputDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("direct raytracer web server", "url", fmt.Sprintf("http://localhost:%d/api/scenes", cfg.Port))
	if err := webServer.Start(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
