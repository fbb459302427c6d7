package scene

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/geometry"
	"github.com/df07/go-direct-raytracer/pkg/lights"
	"github.com/df07/go-direct-raytracer/pkg/material"
)

// Builder assembles a Scene one directive at a time, the way a scene file
// describes it: objects use whichever material was set last, and triangles
// refer to earlier vertices and normals by index.
//
// The first error sticks; later calls are ignored and Build returns it.
type Builder struct {
	scene    *Scene
	material material.Material
	vertices []core.Vec3
	normals  []core.Vec3
	err      error
}

// NewBuilder starts from Default()
func NewBuilder() *Builder {
	return &Builder{
		scene:    Default(),
		material: material.Default(),
	}
}

// Camera sets the camera. Direction and up are normalized; halfAngle is half
// the vertical field of view in degrees.
func (b *Builder) Camera(position, direction, up core.Vec3, halfAngle float32) *Builder {
	if b.err != nil {
		return b
	}
	if direction.IsZero() || up.IsZero() {
		b.err = invalid("camera direction and up must be non-zero")
		return b
	}
	b.scene.CameraPosition = position
	b.scene.CameraDirection = direction.Normalize()
	b.scene.CameraUp = up.Normalize()
	b.scene.CameraHalfAngleTan = math32.Tan(halfAngle * math32.Pi / 180)
	return b
}

// Resolution sets the output size in pixels
func (b *Builder) Resolution(width, height int) *Builder {
	b.scene.Width = width
	b.scene.Height = height
	return b
}

// Ambient sets the ambient light color
func (b *Builder) Ambient(c core.Color) *Builder {
	b.scene.AmbientLight = clampColor(c)
	return b
}

// Background sets the color of rays that hit nothing
func (b *Builder) Background(c core.Color) *Builder {
	b.scene.Background = clampColor(c)
	return b
}

// MaxDepth sets the bounce limit carried on the scene
func (b *Builder) MaxDepth(n int) *Builder {
	b.scene.MaxCollisions = n
	return b
}

// Output records where the scene wants its image written
func (b *Builder) Output(path string) *Builder {
	b.scene.OutputImage = path
	return b
}

// Material sets the material used by subsequently added objects
func (b *Builder) Material(m material.Material) *Builder {
	m.Ambient = clampColor(m.Ambient)
	m.Diffuse = clampColor(m.Diffuse)
	m.Specular = clampColor(m.Specular)
	m.Transmissive = clampColor(m.Transmissive)
	b.material = m
	return b
}

// Vertex adds a vertex for later triangles
func (b *Builder) Vertex(v core.Vec3) *Builder {
	b.vertices = append(b.vertices, v)
	return b
}

// Normal adds a normal for later triangles
func (b *Builder) Normal(n core.Vec3) *Builder {
	b.normals = append(b.normals, n)
	return b
}

// Sphere adds a sphere
func (b *Builder) Sphere(center core.Vec3, radius float32) *Builder {
	if b.err != nil {
		return b
	}
	if !(radius > 0) {
		b.err = invalid("sphere radius must be positive, got %v", radius)
		return b
	}
	b.scene.AddObject(geometry.NewSphere(center, radius, b.material))
	return b
}

// Plane adds an infinite plane
func (b *Builder) Plane(point, normal core.Vec3) *Builder {
	if b.err != nil {
		return b
	}
	if normal.IsZero() {
		b.err = invalid("plane normal must be non-zero")
		return b
	}
	b.scene.AddObject(geometry.NewPlane(point, normal, b.material))
	return b
}

// Triangle adds a triangle over three previously added vertices
func (b *Builder) Triangle(i, j, k int) *Builder {
	if b.err != nil {
		return b
	}
	v0, v1, v2, err := b.lookupVertices(i, j, k)
	if err != nil {
		b.err = err
		return b
	}
	b.scene.AddObject(geometry.NewTriangle(v0, v1, v2, b.material))
	return b
}

// NormalTriangle adds a triangle with per-vertex normals, all referenced by
// index
func (b *Builder) NormalTriangle(i, j, k, ni, nj, nk int) *Builder {
	if b.err != nil {
		return b
	}
	v0, v1, v2, err := b.lookupVertices(i, j, k)
	if err != nil {
		b.err = err
		return b
	}
	var n [3]core.Vec3
	for idx, ref := range [3]int{ni, nj, nk} {
		if ref < 0 || ref >= len(b.normals) {
			b.err = fmt.Errorf("%w: %d (have %d)", ErrNoSuchNormal, ref, len(b.normals))
			return b
		}
		n[idx] = b.normals[ref]
	}
	b.scene.AddObject(geometry.NewTriangleWithNormals(v0, v1, v2, n[0], n[1], n[2], b.material))
	return b
}

func (b *Builder) lookupVertices(i, j, k int) (v0, v1, v2 core.Vec3, err error) {
	var v [3]core.Vec3
	for idx, ref := range [3]int{i, j, k} {
		if ref < 0 || ref >= len(b.vertices) {
			return v0, v1, v2, fmt.Errorf("%w: %d (have %d)", ErrNoSuchVertex, ref, len(b.vertices))
		}
		v[idx] = b.vertices[ref]
	}
	return v[0], v[1], v[2], nil
}

// DirectionalLight adds a light at infinity; direction points toward it
func (b *Builder) DirectionalLight(c core.Color, direction core.Vec3, intensity float32) *Builder {
	if b.err != nil {
		return b
	}
	if direction.IsZero() {
		b.err = invalid("directional light direction must be non-zero")
		return b
	}
	b.scene.AddLight(lights.NewDirectional(clampColor(c), direction, intensity))
	return b
}

// PointLight adds a point light
func (b *Builder) PointLight(c core.Color, position core.Vec3, intensity float32) *Builder {
	if b.err != nil {
		return b
	}
	b.scene.AddLight(lights.NewPoint(clampColor(c), position, intensity))
	return b
}

// SpotLight adds a spot light; angles are in degrees
func (b *Builder) SpotLight(c core.Color, position, direction core.Vec3, falloffAngle, maxAngle, intensity float32) *Builder {
	if b.err != nil {
		return b
	}
	if direction.IsZero() {
		b.err = invalid("spot light direction must be non-zero")
		return b
	}
	b.scene.AddLight(lights.NewSpot(clampColor(c), position, direction, intensity, falloffAngle, maxAngle))
	return b
}

// Build returns the scene, or the first error met while building or
// validating it
func (b *Builder) Build() (*Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.scene.Validate(); err != nil {
		return nil, err
	}
	return b.scene, nil
}

func clampColor(c core.Color) core.Color {
	return c.Clamp(0, 1)
}
