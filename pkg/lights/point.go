package lights

import (
	"github.com/df07/go-direct-raytracer/pkg/core"
)

// pointIntensityScale calibrates point light brightness; scenes written for
// this renderer assume it.
const pointIntensityScale = 10.0

// Point is an omnidirectional light at a position
type Point struct {
	color     core.Color
	Position  core.Vec3
	Intensity float32
}

// NewPoint creates a point light
func NewPoint(color core.Color, position core.Vec3, intensity float32) *Point {
	return &Point{
		color:     color,
		Position:  position,
		Intensity: intensity,
	}
}

// Color returns the light color
func (p *Point) Color() core.Color { return p.color }

// DirectionFrom returns the direction and distance from point to the light
func (p *Point) DirectionFrom(point core.Vec3) (core.Vec3, float32) {
	return directionTo(p.Position, point)
}

// IntensityAt falls off with the inverse square of the distance. A point at
// the light's position receives nothing.
func (p *Point) IntensityAt(point core.Vec3) float32 {
	distanceSquared := point.Subtract(p.Position).LengthSquared()
	if distanceSquared == 0 {
		return 0
	}
	return pointIntensityScale * p.Intensity / distanceSquared
}

func (p *Point) light() {}
