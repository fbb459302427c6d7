package geometry

import (
	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/material"
)

// Triangle represents a single flat-shaded triangle
type Triangle struct {
	V0, V1, V2    core.Vec3
	VertexNormals *[3]core.Vec3 // Normals supplied per vertex, nil when derived from winding
	material      material.Material
	normal        core.Vec3 // Cached unit normal
}

// NewTriangle creates a triangle whose normal follows the winding of the
// vertices: (v1-v0) × (v2-v0).
func NewTriangle(v0, v1, v2 core.Vec3, mat material.Material) *Triangle {
	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		material: mat,
		normal:   v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize(),
	}
}

// NewTriangleWithNormals creates a triangle from vertices with per-vertex
// normals. The normals are kept on the triangle but shading stays flat: the
// face normal is their normalized sum.
func NewTriangleWithNormals(v0, v1, v2, n0, n1, n2 core.Vec3, mat material.Material) *Triangle {
	return &Triangle{
		V0:            v0,
		V1:            v1,
		V2:            v2,
		VertexNormals: &[3]core.Vec3{n0, n1, n2},
		material:      mat,
		normal:        n0.Normalize().Add(n1.Normalize()).Add(n2.Normalize()).Normalize(),
	}
}

// CollidesWith intersects the ray with the triangle's plane, then keeps the
// hit only if its barycentric coordinates lie inside the triangle.
func (t *Triangle) CollidesWith(ray core.Ray) (float32, bool) {
	dist, ok := CollidePlane(ray, t.V0, t.normal)
	if !ok {
		return 0, false
	}

	alpha, beta, ok := t.barycentric(ray.At(dist))
	if !ok {
		return 0, false
	}
	if alpha < 0 || beta < 0 || alpha+beta > 1 {
		return 0, false
	}
	return dist, true
}

// barycentric returns the weights of V1 and V2 for a point in the
// triangle's plane. Degenerate triangles report false.
func (t *Triangle) barycentric(p core.Vec3) (alpha, beta float32, ok bool) {
	e1 := t.V1.Subtract(t.V0)
	e2 := t.V2.Subtract(t.V0)
	ep := p.Subtract(t.V0)

	d00 := e1.Dot(e1)
	d01 := e1.Dot(e2)
	d11 := e2.Dot(e2)
	d20 := ep.Dot(e1)
	d21 := ep.Dot(e2)

	denominator := d00*d11 - d01*d01
	if denominator == 0 {
		return 0, 0, false
	}

	alpha = (d11*d20 - d01*d21) / denominator
	beta = (d00*d21 - d01*d20) / denominator
	return alpha, beta, true
}

// NormalAt returns the precomputed face normal regardless of the point
func (t *Triangle) NormalAt(core.Vec3) core.Vec3 {
	return t.normal
}

// Material returns the triangle's material
func (t *Triangle) Material() material.Material {
	return t.material
}

func (t *Triangle) renderable() {}
