package geometry

import (
	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/material"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3         // A point on the plane
	Normal   core.Vec3         // Unit normal
	material material.Material // Material of the plane
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, mat material.Material) *Plane {
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		material: mat,
	}
}

// CollidesWith tests if a ray intersects with the plane
func (p *Plane) CollidesWith(ray core.Ray) (float32, bool) {
	return CollidePlane(ray, p.Point, p.Normal)
}

// NormalAt returns the plane normal; the point is not checked
func (p *Plane) NormalAt(core.Vec3) core.Vec3 {
	return p.Normal
}

// Material returns the plane's material
func (p *Plane) Material() material.Material {
	return p.material
}

func (p *Plane) renderable() {}
