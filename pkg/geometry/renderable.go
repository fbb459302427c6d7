package geometry

import (
	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/material"
)

// Renderable is an object rays can be tested against. The set of
// implementations is closed: Plane, Sphere and Triangle.
type Renderable interface {
	// CollidesWith returns the distance along the ray to the nearest hit in
	// front of its origin, if there is one.
	CollidesWith(ray core.Ray) (float32, bool)

	// NormalAt returns the unit surface normal at a point. The result is
	// unspecified for points not on the surface.
	NormalAt(point core.Vec3) core.Vec3

	// Material returns the object's material
	Material() material.Material

	renderable()
}

// CollidePlane intersects a ray with the plane through point with the given
// normal. Rays parallel to the plane and hits behind the origin miss.
func CollidePlane(ray core.Ray, point, normal core.Vec3) (float32, bool) {
	denominator := normal.Dot(ray.Direction)
	if denominator == 0 {
		return 0, false
	}

	t := normal.Dot(point.Subtract(ray.Origin)) / denominator
	if t < 0 {
		return 0, false
	}
	return t, true
}
