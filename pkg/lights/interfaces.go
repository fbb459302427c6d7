package lights

import "github.com/df07/go-direct-raytracer/pkg/core"

// Light is a source of direct illumination. The set of implementations is
// closed: Directional, Point and Spot.
type Light interface {
	// Color returns the color of the light
	Color() core.Color

	// DirectionFrom returns the unit vector from point toward the light and
	// the distance to it, which is +Inf for lights at infinity.
	DirectionFrom(point core.Vec3) (core.Vec3, float32)

	// IntensityAt returns the intensity reaching point, ignoring occlusion
	IntensityAt(point core.Vec3) float32

	light()
}

// directionTo is shared by lights that sit at a point in space
func directionTo(position, point core.Vec3) (core.Vec3, float32) {
	v := position.Subtract(point)
	return v.Normalize(), v.Length()
}
