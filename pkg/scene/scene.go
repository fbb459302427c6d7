package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/geometry"
	"github.com/df07/go-direct-raytracer/pkg/lights"
)

var (
	// ErrInvalidScene is returned when a scene fails validation
	ErrInvalidScene = errors.New("invalid scene")
	// ErrNoSuchVertex is returned when a triangle references a missing vertex
	ErrNoSuchVertex = errors.New("no such vertex")
	// ErrNoSuchNormal is returned when a triangle references a missing normal
	ErrNoSuchNormal = errors.New("no such normal")
	// ErrUnknownScene is returned when a built-in scene name is not registered
	ErrUnknownScene = errors.New("unknown scene")
)

// unitTolerance is how far camera vectors may stray from unit length
const unitTolerance = 1e-3

// Scene contains everything needed to render one image. It is built once,
// then shared read-only by every pixel of the render.
type Scene struct {
	CameraPosition     core.Vec3
	CameraDirection    core.Vec3 // Unit
	CameraUp           core.Vec3 // Unit, ideally orthogonal to CameraDirection
	CameraHalfAngleTan float32   // Tangent of half the vertical field of view

	Width  int
	Height int

	AmbientLight core.Color
	Background   core.Color

	Lights  []lights.Light
	Objects []geometry.Renderable

	// MaxCollisions bounds recursive bounces. Shading is single-bounce, so
	// it is carried but not consulted.
	MaxCollisions int

	// OutputImage is the path the scene asks to be written to, if any
	OutputImage string
}

// Default returns an empty scene: camera at the origin looking down +Z with
// +Y up and a 90° vertical field of view, 640x480, black ambient light and
// background.
func Default() *Scene {
	return &Scene{
		CameraPosition:     core.NewVec3(0, 0, 0),
		CameraDirection:    core.NewVec3(0, 0, 1),
		CameraUp:           core.NewVec3(0, 1, 0),
		CameraHalfAngleTan: 1.0,
		Width:              640,
		Height:             480,
		AmbientLight:       core.Black,
		Background:         core.Black,
		Lights:             make([]lights.Light, 0),
		Objects:            make([]geometry.Renderable, 0),
		MaxCollisions:      5,
	}
}

// AddObject appends a renderable to the scene
func (s *Scene) AddObject(objects ...geometry.Renderable) {
	s.Objects = append(s.Objects, objects...)
}

// AddLight appends a light to the scene
func (s *Scene) AddLight(ls ...lights.Light) {
	s.Lights = append(s.Lights, ls...)
}

// CameraRight returns the vector pointing out of the right of the camera
func (s *Scene) CameraRight() core.Vec3 {
	return s.CameraUp.Cross(s.CameraDirection)
}

// AspectRatio returns width / height
func (s *Scene) AspectRatio() float32 {
	return float32(s.Width) / float32(s.Height)
}

// Validate checks the invariants the renderer relies on. Every error wraps
// ErrInvalidScene.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return invalid("resolution must be positive, got %dx%d", s.Width, s.Height)
	}
	if !s.CameraPosition.IsFinite() {
		return invalid("camera position %v is not finite", s.CameraPosition)
	}
	if !s.CameraDirection.IsUnit(unitTolerance) {
		return invalid("camera direction %v is not a unit vector", s.CameraDirection)
	}
	if !s.CameraUp.IsUnit(unitTolerance) {
		return invalid("camera up %v is not a unit vector", s.CameraUp)
	}
	if s.CameraRight().IsZero() {
		return invalid("camera up %v is parallel to camera direction", s.CameraUp)
	}
	if !(s.CameraHalfAngleTan > 0) || math32.IsInf(s.CameraHalfAngleTan, 0) {
		return invalid("camera half-angle tangent must be positive and finite, got %v", s.CameraHalfAngleTan)
	}

	for i, object := range s.Objects {
		if err := validateObject(object); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	for i, light := range s.Lights {
		if err := validateLight(light); err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
	}
	return nil
}

func validateObject(object geometry.Renderable) error {
	switch o := object.(type) {
	case *geometry.Plane:
		if !o.Point.IsFinite() || !o.Normal.IsUnit(unitTolerance) {
			return invalid("plane needs a finite point and non-zero normal")
		}
	case *geometry.Sphere:
		if !o.Center.IsFinite() || !(o.Radius > 0) {
			return invalid("sphere needs a finite center and positive radius, got radius %v", o.Radius)
		}
	case *geometry.Triangle:
		if !o.V0.IsFinite() || !o.V1.IsFinite() || !o.V2.IsFinite() {
			return invalid("triangle vertices must be finite")
		}
		if !o.NormalAt(o.V0).IsUnit(unitTolerance) {
			return invalid("triangle is degenerate or has zero normals")
		}
	case nil:
		return invalid("nil object")
	}
	return nil
}

// MaxLightIntensity bounds the intensity of a single light. The tracer also
// caps what one light delivers to a point, which covers inverse-square
// falloff at tiny distances.
const MaxLightIntensity = 1e6

func validateIntensity(intensity float32) error {
	if math32.IsNaN(intensity) || intensity < 0 || intensity > MaxLightIntensity {
		return invalid("light intensity must be within [0, %g], got %v", float32(MaxLightIntensity), intensity)
	}
	return nil
}

func validateLight(light lights.Light) error {
	switch l := light.(type) {
	case *lights.Directional:
		if err := validateIntensity(l.Intensity); err != nil {
			return err
		}
		if !l.Direction.IsUnit(unitTolerance) {
			return invalid("directional light needs a non-zero direction")
		}
	case *lights.Point:
		if err := validateIntensity(l.Intensity); err != nil {
			return err
		}
		if !l.Position.IsFinite() {
			return invalid("point light position %v is not finite", l.Position)
		}
	case *lights.Spot:
		if err := validateIntensity(l.Intensity); err != nil {
			return err
		}
		if !l.Position.IsFinite() || !l.Direction.IsUnit(unitTolerance) {
			return invalid("spot light needs a finite position and non-zero direction")
		}
		if l.FalloffAngle < 0 || l.MaxAngle < 0 {
			return invalid("spot light angles must be non-negative")
		}
	case nil:
		return invalid("nil light")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}
