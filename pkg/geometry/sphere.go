package geometry

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float32
	material material.Material
}

// NewSphere creates a new sphere. A non-positive radius is a programming
// error; scene validation rejects such spheres before they get here.
func NewSphere(center core.Vec3, radius float32, mat material.Material) *Sphere {
	if !(radius > 0) {
		panic(fmt.Sprintf("geometry: sphere radius must be positive, got %v", radius))
	}
	return &Sphere{
		Center:   center,
		Radius:   radius,
		material: mat,
	}
}

// CollidesWith tests if a ray intersects with the sphere. The nearer root is
// preferred; when the origin is inside the sphere the exit root is returned.
func (s *Sphere) CollidesWith(ray core.Ray) (float32, bool) {
	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.LengthSquared()
	b := 2 * ray.Direction.Dot(ray.Origin.Subtract(s.Center))
	c := ray.Origin.LengthSquared() + s.Center.LengthSquared() -
		2*ray.Origin.Dot(s.Center) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}

	sqrtD := math32.Sqrt(discriminant)
	twoA := 2 * a

	if near := (-b - sqrtD) / twoA; near > 0 {
		return near, true
	}
	if far := (-b + sqrtD) / twoA; far > 0 {
		return far, true
	}
	// Both roots behind the origin
	return 0, false
}

// NormalAt returns the outward unit normal at a point on the sphere
func (s *Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}

// Material returns the sphere's material
func (s *Sphere) Material() material.Material {
	return s.material
}

func (s *Sphere) renderable() {}
