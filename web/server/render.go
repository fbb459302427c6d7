package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/postprocess"
	"github.com/df07/go-direct-raytracer/pkg/renderer"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

const (
	defaultScene = "default"
	// maxThumbSize bounds the thumb parameter
	maxThumbSize = 1024
	// maxDescriptionBytes bounds POSTed scene descriptions
	maxDescriptionBytes = 1 << 20
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string // Built-in scene name; ignored for POSTed descriptions
	Width   int    // Image width, 0 keeps the scene's
	Height  int    // Image height, 0 keeps the scene's
	Thumb   int    // Longest edge of a thumbnail, 0 for full size
	Filters string // Post-processing chain, see postprocess.Parse
	Save    bool   // Also write the result to the server's sink

	filters []postprocess.Filter
}

// Stats represents render statistics
type Stats struct {
	TotalPixels int   `json:"totalPixels"`
	Hits        int   `json:"hits"`
	Misses      int   `json:"misses"`
	ShadowRays  int   `json:"shadowRays"`
	Occluded    int   `json:"occluded"`
	Tiles       int   `json:"tiles"`
	DurationMs  int64 `json:"durationMs"`
}

func newStats(rs renderer.RenderStats) Stats {
	return Stats{
		TotalPixels: rs.TotalPixels,
		Hits:        rs.Hits,
		Misses:      rs.Misses,
		ShadowRays:  rs.ShadowRays,
		Occluded:    rs.Occluded,
		Tiles:       rs.Tiles,
		DurationMs:  rs.Duration.Milliseconds(),
	}
}

// renderJob is one render on behalf of a request
type renderJob struct {
	id     string
	scene  *scene.Scene
	req    *RenderRequest
	logger core.Logger
	onTile func(renderer.TileResult)
}

// handleRender renders a built-in scene and responds with a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	w.Header().Set("X-Render-ID", id)

	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.renderAndRespond(w, r, id, sceneObj, req)
}

// handleRenderDescription renders a JSON scene description from the body
func (s *Server) handleRenderDescription(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	w.Header().Set("X-Render-ID", id)

	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	desc, err := scene.DecodeDescription(http.MaxBytesReader(w, r.Body, maxDescriptionBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sceneObj, err := desc.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Scene = "custom"

	s.renderAndRespond(w, r, id, sceneObj, req)
}

func (s *Server) renderAndRespond(w http.ResponseWriter, r *http.Request, id string, sceneObj *scene.Scene, req *RenderRequest) {
	ctx := r.Context()
	job := &renderJob{
		id:     id,
		scene:  sceneObj,
		req:    req,
		logger: core.NewSlogLogger(slog.Default(), "render_id", id),
	}

	img, stats, err := s.runRender(ctx, job)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			slog.Info("render abandoned", "render_id", id, "error", err)
		case errors.Is(err, scene.ErrInvalidScene):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("render failed", "render_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if req.Save {
		location, err := s.sink.Write(ctx, id+".png", img)
		if err != nil {
			slog.Error("save render", "render_id", id, "error", err)
			writeError(w, http.StatusBadGateway, "save failed: "+err.Error())
			return
		}
		w.Header().Set("X-Render-Location", location)
	}

	slog.Info("render finished",
		"render_id", id,
		"scene", req.Scene,
		"width", sceneObj.Width,
		"height", sceneObj.Height,
		"duration", stats.Duration)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		slog.Error("encode render", "render_id", id, "error", err)
	}
}

// runRender applies the request's overrides to the job's scene, renders it
// and runs the post-processing chain
func (s *Server) runRender(ctx context.Context, job *renderJob) (image.Image, renderer.RenderStats, error) {
	if job.req.Width > 0 {
		job.scene.Width = job.req.Width
	}
	if job.req.Height > 0 {
		job.scene.Height = job.req.Height
	}
	if err := job.scene.Validate(); err != nil {
		return nil, renderer.RenderStats{}, err
	}
	if job.scene.Width > s.cfg.MaxWidth || job.scene.Height > s.cfg.MaxHeight {
		return nil, renderer.RenderStats{}, fmt.Errorf("%w: %dx%d exceeds the %dx%d limit",
			scene.ErrInvalidScene, job.scene.Width, job.scene.Height, s.cfg.MaxWidth, s.cfg.MaxHeight)
	}

	img, stats, err := renderer.RenderContext(ctx, job.scene, renderer.Config{
		NumWorkers: s.cfg.Workers,
		TileSize:   s.cfg.TileSize,
		OnTile:     job.onTile,
		Logger:     job.logger,
	})
	if err != nil {
		return nil, stats, err
	}

	var result image.Image = img.ToRGBA()
	if len(job.req.filters) > 0 {
		result = postprocess.Apply(result, job.req.filters...)
	}
	if job.req.Thumb > 0 {
		size := uint(job.req.Thumb)
		result = resize.Thumbnail(size, size, result, resize.Lanczos3)
	}
	return result, stats, nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, s.cfg.MaxWidth); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, s.cfg.MaxHeight); err != nil {
		return nil, err
	}
	if req.Thumb, err = parseIntParam(values, "thumb", 0, 1, maxThumbSize); err != nil {
		return nil, err
	}
	if req.Save, err = parseBoolParam(values, "save"); err != nil {
		return nil, err
	}
	if req.Save && s.sink == nil {
		return nil, errors.New("saving renders is not configured")
	}

	req.Filters = values.Get("filters")
	if req.filters, err = postprocess.Parse(req.Filters); err != nil {
		return nil, err
	}
	return req, nil
}
