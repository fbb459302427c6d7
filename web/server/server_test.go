package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/df07/go-direct-raytracer/internal/config"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

// memorySink keeps saved images in memory
type memorySink struct {
	mu     sync.Mutex
	images map[string]image.Image
	err    error
}

func newMemorySink() *memorySink {
	return &memorySink{images: make(map[string]image.Image)}
}

func (m *memorySink) Write(ctx context.Context, name string, img image.Image) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[name] = img
	return "mem://" + name, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:      8080,
		Workers:   2,
		TileSize:  4,
		OutputDir: "output",
		ScenesDir: "../../scenes",
		LogLevel:  "info",
		MaxWidth:  64,
		MaxHeight: 64,
	}
}

func serve(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodePNG(t *testing.T, rec *httptest.ResponseRecorder) image.Image {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Expected Content-Type image/png, got %q (body %s)", ct, rec.Body.String())
	}
	img, err := imaging.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	return img
}

func TestHandleHealth(t *testing.T) {
	rec := serve(NewServer(testConfig()), "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestHandleScenes(t *testing.T) {
	rec := serve(NewServer(testConfig()), "GET", "/api/scenes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var scenes []scene.SceneInfo
	if err := json.NewDecoder(rec.Body).Decode(&scenes); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(scenes) != len(scene.Names()) {
		t.Fatalf("Expected %d scenes, got %d", len(scene.Names()), len(scenes))
	}
	for i, name := range scene.Names() {
		if scenes[i].ID != name {
			t.Errorf("Scene %d: expected %q, got %q", i, name, scenes[i].ID)
		}
	}
}

func TestHandleSceneConfig(t *testing.T) {
	rec := serve(NewServer(testConfig()), "GET", "/api/scene-config?scene=sphere", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var body struct {
		Scene    string `json:"scene"`
		Defaults struct {
			Width   int `json:"width"`
			Height  int `json:"height"`
			Objects int `json:"objects"`
		} `json:"defaults"`
		Limits struct {
			Width struct {
				Max int `json:"max"`
			} `json:"width"`
		} `json:"limits"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Scene != "sphere" || body.Defaults.Width != 1920 || body.Defaults.Height != 1080 || body.Defaults.Objects != 1 {
		t.Errorf("Unexpected scene config: %+v", body)
	}
	if body.Limits.Width.Max != 64 {
		t.Errorf("Expected width limit 64, got %d", body.Limits.Width.Max)
	}

	if rec := serve(NewServer(testConfig()), "GET", "/api/scene-config?scene=nope", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown scene, got %d", rec.Code)
	}
}

func TestHandleRender(t *testing.T) {
	rec := serve(NewServer(testConfig()), "GET", "/api/render?scene=sphere&width=8&height=6", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := uuid.Parse(rec.Header().Get("X-Render-ID")); err != nil {
		t.Errorf("Expected a UUID render ID, got %q", rec.Header().Get("X-Render-ID"))
	}
	if rec.Header().Get("X-Render-Location") != "" {
		t.Error("Expected no location for an unsaved render")
	}

	img := decodePNG(t, rec)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Expected 8x6 image, got %v", img.Bounds())
	}
}

func TestHandleRender_SceneFile(t *testing.T) {
	s := NewServer(testConfig())

	rec := serve(s, "GET", "/api/render?scene=spheres&width=8&height=6", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	img := decodePNG(t, rec)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Expected 8x6 image, got %v", img.Bounds())
	}

	rec = serve(s, "GET", "/api/render?scene=..%2Fspheres&width=8&height=6", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a path outside the scenes dir, got %d", rec.Code)
	}
}

func TestHandleRender_Thumbnail(t *testing.T) {
	rec := serve(NewServer(testConfig()), "GET", "/api/render?scene=shadow&width=16&height=12&thumb=8", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	img := decodePNG(t, rec)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Expected 8x6 thumbnail, got %v", img.Bounds())
	}
}

func TestHandleRender_Filters(t *testing.T) {
	rec := serve(NewServer(testConfig()), "GET", "/api/render?scene=default&width=16&height=12&filters=grayscale,scale:0.5:0.5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	img := decodePNG(t, rec)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Expected 8x6 image, got %v", img.Bounds())
	}
}

func TestHandleRender_Save(t *testing.T) {
	sink := newMemorySink()
	s := NewServer(testConfig()).WithSink(sink)

	rec := serve(s, "GET", "/api/render?scene=sphere&width=4&height=4&save=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	id := rec.Header().Get("X-Render-ID")
	if got, want := rec.Header().Get("X-Render-Location"), "mem://"+id+".png"; got != want {
		t.Errorf("Expected location %q, got %q", want, got)
	}
	if _, ok := sink.images[id+".png"]; !ok {
		t.Errorf("Expected %s.png in the sink, have %v", id, len(sink.images))
	}
}

func TestHandleRender_SaveFailure(t *testing.T) {
	sink := newMemorySink()
	sink.err = errors.New("bucket unavailable")
	s := NewServer(testConfig()).WithSink(sink)

	rec := serve(s, "GET", "/api/render?scene=sphere&width=4&height=4&save=true", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rec.Code)
	}
}

func TestHandleRender_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown scene", "scene=nope&width=4&height=4"},
		{"zero width", "scene=sphere&width=0&height=4"},
		{"non-numeric height", "scene=sphere&width=4&height=tall"},
		{"width above limit", "scene=sphere&width=65&height=4"},
		{"scene default above limit", "scene=sphere"},
		{"thumb above limit", "scene=sphere&width=4&height=4&thumb=5000"},
		{"unknown filter", "scene=sphere&width=4&height=4&filters=sepia"},
		{"bad save flag", "scene=sphere&width=4&height=4&save=maybe"},
		{"save without sink", "scene=sphere&width=4&height=4&save=true"},
	}

	s := NewServer(testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, "GET", "/api/render?"+tt.query, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
				t.Errorf("Expected a JSON error body, got %v (%v)", body, err)
			}
		})
	}
}

const tinyDescription = `{
	"width": 6,
	"height": 4,
	"ambient": [0.2, 0.2, 0.2],
	"materials": {"red": {"ambient": [1, 0, 0], "diffuse": [1, 0, 0]}},
	"objects": [
		{"type": "sphere", "material": "red", "center": [0, 0, 3], "radius": 1},
		{"type": "plane", "point": [0, -1, 0], "normal": [0, 1, 0]}
	],
	"lights": [
		{"type": "point", "color": [1, 1, 1], "position": [0, 5, 0], "intensity": 10}
	]
}`

func TestHandleRenderDescription(t *testing.T) {
	rec := serve(NewServer(testConfig()), "POST", "/api/render", tinyDescription)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	img := decodePNG(t, rec)
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("Expected 6x4 image, got %v", img.Bounds())
	}
}

func TestHandleRenderDescription_Overrides(t *testing.T) {
	rec := serve(NewServer(testConfig()), "POST", "/api/render?width=10&height=5", tinyDescription)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	img := decodePNG(t, rec)
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 5 {
		t.Errorf("Expected 10x5 image, got %v", img.Bounds())
	}
}

func TestHandleRenderDescription_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"objects": [`},
		{"unknown field", `{"width": 4, "height": 4, "color": "blue", "objects": []}`},
		{"unknown object type", `{"width": 4, "height": 4, "objects": [{"type": "cube"}]}`},
		{"unknown material", `{"width": 4, "height": 4, "objects": [{"type": "sphere", "material": "gold", "radius": 1}]}`},
		{"negative radius", `{"width": 4, "height": 4, "objects": [{"type": "sphere", "radius": -1}]}`},
		{"too large", `{"width": 100, "height": 4, "objects": []}`},
		{"overflowing light", `{"width": 4, "height": 4, "objects": [{"type": "plane", "point": [0, -1, 0], "normal": [0, 1, 0]}], "lights": [{"type": "point", "color": [1, 0, 0], "position": [0, 1, 0], "intensity": 1e38}]}`},
		{"negative light", `{"width": 4, "height": 4, "objects": [], "lights": [{"type": "directional", "color": [1, 1, 1], "direction": [0, 1, 0], "intensity": -2}]}`},
	}

	s := NewServer(testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, "POST", "/api/render", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleRenderDescription_BrightLightStillRenders(t *testing.T) {
	body := `{
		"width": 4,
		"height": 4,
		"objects": [{"type": "plane", "point": [0, -1, 0], "normal": [0, 1, 0]}],
		"lights": [
			{"type": "point", "color": [1, 0, 0], "position": [0, -0.999, 2], "intensity": 1e6},
			{"type": "point", "color": [0, 1, 0], "position": [0, 5, 0], "intensity": 1e6}
		]
	}`
	s := NewServer(testConfig())

	rec := serve(s, "POST", "/api/render", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodePNG(t, rec)

	rec = serve(s, "POST", "/api/render", strings.Replace(body, "1e6", "1e38", 1))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec = serve(s, "GET", "/api/health", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected the server to keep serving, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	rec := serve(NewServer(testConfig()), "OPTIONS", "/api/render", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Allow-Origin *, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "X-Render-ID") {
		t.Errorf("Expected X-Render-ID to be exposed, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	handler := recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected int
		wantErr  bool
	}{
		{"missing uses default", "", 7, false},
		{"in range", "n=3", 3, false},
		{"at max", "n=10", 10, false},
		{"below min", "n=0", 0, true},
		{"above max", "n=11", 0, true},
		{"not a number", "n=x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/?"+tt.query, nil)
			got, err := parseIntParam(req.URL.Query(), "n", 7, 1, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}
