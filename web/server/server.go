package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/df07/go-direct-raytracer/internal/config"
	"github.com/df07/go-direct-raytracer/pkg/loaders"
	"github.com/df07/go-direct-raytracer/pkg/output"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

// Server handles web requests for the raytracer
type Server struct {
	cfg    *config.Config
	router *mux.Router
	sink   output.Sink // Where save=true renders go; nil disables saving
}

// NewServer creates a web server with its routes registered
func NewServer(cfg *config.Config) *Server {
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

// WithSink makes renders requested with save=true persist to sink
func (s *Server) WithSink(sink output.Sink) *Server {
	s.sink = sink
	return s
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery)
	r.Use(requestLogger)
	r.Use(cors)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/scenes", s.handleScenes).Methods("GET")
	api.HandleFunc("/scene-config", s.handleSceneConfig).Methods("GET")
	api.HandleFunc("/render", s.handleRender).Methods("GET")
	api.HandleFunc("/render", s.handleRenderDescription).Methods("POST", "OPTIONS")
	api.HandleFunc("/inspect", s.handleInspect).Methods("GET")
	api.HandleFunc("/ws/render", s.handleRenderWS)
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.List())
}

// handleSceneConfig returns the default resolution of a scene and the
// request limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":         sceneObj.Width,
			"height":        sceneObj.Height,
			"maxCollisions": sceneObj.MaxCollisions,
			"objects":       len(sceneObj.Objects),
			"lights":        len(sceneObj.Lights),
		},
		"limits": map[string]interface{}{
			"width":  map[string]int{"min": 1, "max": s.cfg.MaxWidth},
			"height": map[string]int{"min": 1, "max": s.cfg.MaxHeight},
		},
	})
}

// createScene builds a fresh copy of a built-in scene, falling back to a
// scene file of that name in the configured scenes directory
func (s *Server) createScene(sceneName string) (*scene.Scene, error) {
	sceneObj, err := scene.Lookup(sceneName)
	if err == nil || !errors.Is(err, scene.ErrUnknownScene) {
		return sceneObj, err
	}
	path, ok := loaders.FindScene(s.cfg.ScenesDir, sceneName)
	if !ok {
		return nil, err
	}
	return loaders.LoadScene(path)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam accepts the forms understood by strconv.ParseBool
func parseBoolParam(values url.Values, key string) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
