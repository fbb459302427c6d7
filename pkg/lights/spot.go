package lights

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
)

// Spot is a positioned light restricted to a cone around its axis
type Spot struct {
	color        core.Color
	Position     core.Vec3
	Direction    core.Vec3 // Unit axis of the cone, pointing away from the light
	Intensity    float32
	FalloffAngle float32 // Degrees from the axis where intensity starts to drop
	MaxAngle     float32 // Degrees from the axis beyond which there is no light

	cosFalloffStart float32
	cosTotalWidth   float32
}

// NewSpot creates a spot light. Angles are in degrees, measured from the
// axis. If falloffAngle >= maxAngle the cone has a hard edge at maxAngle.
func NewSpot(color core.Color, position, direction core.Vec3, intensity, falloffAngle, maxAngle float32) *Spot {
	return &Spot{
		color:           color,
		Position:        position,
		Direction:       direction.Normalize(),
		Intensity:       intensity,
		FalloffAngle:    falloffAngle,
		MaxAngle:        maxAngle,
		cosFalloffStart: math32.Cos(degreesToRadians(min(falloffAngle, maxAngle))),
		cosTotalWidth:   math32.Cos(degreesToRadians(maxAngle)),
	}
}

// Color returns the light color
func (s *Spot) Color() core.Color { return s.color }

// DirectionFrom returns the direction and distance from point to the light
func (s *Spot) DirectionFrom(point core.Vec3) (core.Vec3, float32) {
	return directionTo(s.Position, point)
}

// IntensityAt returns the base intensity scaled by the angular falloff.
// There is no distance attenuation.
func (s *Spot) IntensityAt(point core.Vec3) float32 {
	lightToPoint := point.Subtract(s.Position)
	if lightToPoint.IsZero() {
		return 0
	}
	cosAngle := s.Direction.Dot(lightToPoint.Normalize())
	return s.Intensity * s.falloff(cosAngle)
}

// falloff is 1 inside the inner cone, 0 outside the outer cone and a quartic
// of the normalized cosine in between.
func (s *Spot) falloff(cosAngle float32) float32 {
	if cosAngle < s.cosTotalWidth {
		return 0
	}
	if cosAngle >= s.cosFalloffStart {
		return 1
	}

	delta := (cosAngle - s.cosTotalWidth) / (s.cosFalloffStart - s.cosTotalWidth)
	return delta * delta * delta * delta
}

func (s *Spot) light() {}

func degreesToRadians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}
