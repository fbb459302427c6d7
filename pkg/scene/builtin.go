package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/material"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type builtin struct {
	info  SceneInfo
	build func() *Scene
}

var builtins = map[string]builtin{
	"sphere": {
		info:  SceneInfo{ID: "sphere", DisplayName: "Ambient Sphere", Description: "A white sphere lit only by ambient light"},
		build: NewSphereScene,
	},
	"default": {
		info:  SceneInfo{ID: "default", DisplayName: "Default", Description: "Spheres on a ground plane under a point and a directional light"},
		build: NewDefaultScene,
	},
	"shadow": {
		info:  SceneInfo{ID: "shadow", DisplayName: "Shadow", Description: "A sphere casting a shadow from a point light onto a plane"},
		build: NewShadowScene,
	},
	"triangles": {
		info:  SceneInfo{ID: "triangles", DisplayName: "Triangles", Description: "A pyramid of flat-shaded triangles"},
		build: NewTrianglesScene,
	},
	"spotlight": {
		info:  SceneInfo{ID: "spotlight", DisplayName: "Spotlight", Description: "Spot light cones on a plane and spheres"},
		build: NewSpotlightScene,
	},
}

// Names returns the registered built-in scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns metadata for every built-in scene, sorted by ID
func List() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtins))
	for _, name := range Names() {
		b := builtins[name]
		s := b.build()
		info := b.info
		info.Width, info.Height = s.Width, s.Height
		infos = append(infos, info)
	}
	return infos
}

// Lookup builds a fresh copy of the named built-in scene
func Lookup(name string) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return b.build(), nil
}

// NewSphereScene is a single white sphere two units in front of the camera,
// lit by ambient light alone.
func NewSphereScene() *Scene {
	white := material.Default()
	white.Ambient = core.White

	s, err := NewBuilder().
		Resolution(1920, 1080).
		Ambient(core.NewColor(0.1, 0.1, 0.1)).
		Output("example.png").
		Material(white).
		Sphere(core.NewVec3(0, 0, 2), 1).
		Build()
	if err != nil {
		panic(err)
	}
	return s
}

// NewDefaultScene creates spheres on a ground plane with two lights
func NewDefaultScene() *Scene {
	ground := material.NewDiffuse(core.NewColor(0.48, 0.48, 0.0))
	ground.Ambient = core.NewColor(0.48, 0.48, 0.0)
	red := material.NewDiffuse(core.NewColor(0.65, 0.25, 0.2))
	red.Ambient = red.Diffuse
	blue := material.NewDiffuse(core.NewColor(0.1, 0.2, 0.5))
	blue.Ambient = blue.Diffuse
	silver := material.NewDiffuse(core.NewColor(0.8, 0.8, 0.8))
	silver.Ambient = silver.Diffuse
	silver.Specular = core.NewColor(0.8, 0.8, 0.8)
	silver.Phong = 50

	s, err := NewBuilder().
		Camera(core.NewVec3(0, 0.75, -3), core.NewVec3(0, -0.1, 1), core.NewVec3(0, 1, 0), 25).
		Resolution(400, 225).
		Ambient(core.NewColor(0.15, 0.15, 0.15)).
		Background(core.NewColor(0.5, 0.7, 1.0)).
		Material(ground).
		Plane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)).
		Material(red).
		Sphere(core.NewVec3(0, 0.5, 1), 0.5).
		Material(silver).
		Sphere(core.NewVec3(-1.1, 0.5, 1), 0.5).
		Material(blue).
		Sphere(core.NewVec3(1.1, 0.5, 1), 0.5).
		PointLight(core.NewColor(1, 0.95, 0.9), core.NewVec3(2, 4, -1), 2).
		DirectionalLight(core.NewColor(0.4, 0.4, 0.5), core.NewVec3(-1, 1, -1), 0.5).
		Build()
	if err != nil {
		panic(err)
	}
	return s
}

// NewShadowScene puts a sphere between a point light and a ground plane
func NewShadowScene() *Scene {
	ground := material.NewDiffuse(core.NewColor(0.9, 0.9, 0.9))
	ground.Ambient = ground.Diffuse
	occluder := material.NewDiffuse(core.NewColor(0.8, 0.3, 0.3))
	occluder.Ambient = occluder.Diffuse

	s, err := NewBuilder().
		Camera(core.NewVec3(0, 3, -6), core.NewVec3(0, -0.45, 1), core.NewVec3(0, 1, 0), 30).
		Resolution(320, 240).
		Ambient(core.NewColor(0.05, 0.05, 0.05)).
		Material(ground).
		Plane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)).
		Material(occluder).
		Sphere(core.NewVec3(0, 1, 0), 0.75).
		PointLight(core.White, core.NewVec3(0, 4, 0), 1.5).
		Build()
	if err != nil {
		panic(err)
	}
	return s
}

// NewTrianglesScene builds a square pyramid out of vertex-indexed triangles
func NewTrianglesScene() *Scene {
	stone := material.NewDiffuse(core.NewColor(0.8, 0.7, 0.5))
	stone.Ambient = stone.Diffuse
	floor := material.NewDiffuse(core.NewColor(0.3, 0.3, 0.35))
	floor.Ambient = floor.Diffuse

	s, err := NewBuilder().
		Camera(core.NewVec3(-2, 2, -4), core.NewVec3(0.45, -0.35, 1), core.NewVec3(0, 1, 0), 30).
		Resolution(320, 240).
		Ambient(core.NewColor(0.1, 0.1, 0.1)).
		Background(core.NewColor(0.05, 0.05, 0.1)).
		Vertex(core.NewVec3(-1, 0, -1)).
		Vertex(core.NewVec3(1, 0, -1)).
		Vertex(core.NewVec3(1, 0, 1)).
		Vertex(core.NewVec3(-1, 0, 1)).
		Vertex(core.NewVec3(0, 1.5, 0)).
		Material(stone).
		// Faces wind counter-clockwise seen from outside
		Triangle(0, 4, 1).
		Triangle(1, 4, 2).
		Triangle(2, 4, 3).
		Triangle(3, 4, 0).
		Material(floor).
		Plane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)).
		DirectionalLight(core.White, core.NewVec3(-0.5, 1, -0.8), 0.9).
		Build()
	if err != nil {
		panic(err)
	}
	return s
}

// NewSpotlightScene shines two colored spot lights onto a plane
func NewSpotlightScene() *Scene {
	floor := material.NewDiffuse(core.White)
	floor.Ambient = core.White
	sphere := material.NewDiffuse(core.NewColor(0.9, 0.9, 0.9))
	sphere.Ambient = sphere.Diffuse

	s, err := NewBuilder().
		Camera(core.NewVec3(0, 4, -6), core.NewVec3(0, -0.6, 1), core.NewVec3(0, 1, 0), 35).
		Resolution(320, 240).
		Ambient(core.NewColor(0.05, 0.05, 0.05)).
		Material(floor).
		Plane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)).
		Material(sphere).
		Sphere(core.NewVec3(0, 0.5, 0), 0.5).
		SpotLight(core.NewColor(1, 0.3, 0.3), core.NewVec3(-1, 4, 0), core.NewVec3(0.2, -1, 0), 12, 20, 1).
		SpotLight(core.NewColor(0.3, 0.3, 1), core.NewVec3(1, 4, 0), core.NewVec3(-0.2, -1, 0), 12, 20, 1).
		Build()
	if err != nil {
		panic(err)
	}
	return s
}
