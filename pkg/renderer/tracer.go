package renderer

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/geometry"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

const (
	// minIntensity is the light intensity below which no shadow ray is cast
	minIntensity = 1e-4
	// shadowBias lifts shadow ray origins off the surface along the normal
	shadowBias = 1e-4
	// maxIntensityAt caps one light's intensity at a point. Sums over any
	// realistic number of lights stay far below math32.MaxFloat32.
	maxIntensityAt = 1e30
)

// Tracer shades rays against a scene with ambient light plus shadow-tested
// direct diffuse light from every light source. It never mutates the scene,
// so one Tracer can be shared by any number of goroutines.
type Tracer struct {
	scene  *scene.Scene
	camera *Camera
}

// NewTracer creates a tracer for the scene
func NewTracer(s *scene.Scene) *Tracer {
	return &Tracer{
		scene:  s,
		camera: NewCamera(s),
	}
}

// Scene returns the scene being traced
func (t *Tracer) Scene() *scene.Scene {
	return t.scene
}

// CameraRay returns the primary ray through pixel (x, y)
func (t *Tracer) CameraRay(x, y int) core.Ray {
	return t.camera.GetRay(x, y)
}

// ClosestCollision finds the nearest object along the ray. When several
// objects report the same distance, the one added to the scene first wins.
func (t *Tracer) ClosestCollision(ray core.Ray) (geometry.Renderable, float32, bool) {
	var closest geometry.Renderable
	closestDist := math32.Inf(1)

	for _, object := range t.scene.Objects {
		if dist, hit := object.CollidesWith(ray); hit && dist < closestDist {
			closest = object
			closestDist = dist
		}
	}

	return closest, closestDist, closest != nil
}

// TraceRay returns the unclamped color seen along the ray
func (t *Tracer) TraceRay(ray core.Ray) core.Color {
	var stats RenderStats
	return t.traceRay(ray, &stats)
}

// TracePixel returns the tone-mapped 8-bit color of pixel (x, y)
func (t *Tracer) TracePixel(x, y int) [3]uint8 {
	var stats RenderStats
	return t.tracePixel(x, y, &stats)
}

func (t *Tracer) tracePixel(x, y int, stats *RenderStats) [3]uint8 {
	stats.TotalPixels++
	return t.traceRay(t.CameraRay(x, y), stats).ToneMap().ToRGB8()
}

func (t *Tracer) traceRay(ray core.Ray, stats *RenderStats) core.Color {
	object, dist, hit := t.ClosestCollision(ray)
	if !hit {
		stats.Misses++
		return t.scene.Background
	}
	stats.Hits++

	point := ray.At(dist)
	normal := object.NormalAt(point)
	mat := object.Material()

	ambient := mat.Ambient.MultiplyColor(t.scene.AmbientLight)
	direct := t.directLight(point, normal, stats)

	return ambient.Add(direct.MultiplyColor(mat.Diffuse))
}

// directLight sums the contribution of every light that reaches point
// unobstructed and from in front of the surface.
func (t *Tracer) directLight(point, normal core.Vec3, stats *RenderStats) core.Color {
	total := core.Black
	shadowOrigin := point.Add(normal.Multiply(shadowBias))

	for _, light := range t.scene.Lights {
		intensity := light.IntensityAt(point)
		if !(intensity >= minIntensity) {
			continue
		}
		intensity = min(intensity, maxIntensityAt)

		lightDir, lightDist := light.DirectionFrom(point)

		stats.ShadowRays++
		if _, blockDist, blocked := t.ClosestCollision(core.NewRay(shadowOrigin, lightDir)); blocked && blockDist < lightDist {
			stats.Occluded++
			continue
		}

		cosAngle := normal.Dot(lightDir)
		if cosAngle < 0 {
			continue
		}
		total = total.Add(light.Color().Scale(cosAngle * intensity))
	}

	return total
}
