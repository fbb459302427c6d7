package lights

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
)

// Directional is a light infinitely far away, shining uniformly
type Directional struct {
	color     core.Color
	Direction core.Vec3 // Unit vector pointing toward the light
	Intensity float32
}

// NewDirectional creates a directional light. direction points from the
// scene toward the light and is normalized.
func NewDirectional(color core.Color, direction core.Vec3, intensity float32) *Directional {
	return &Directional{
		color:     color,
		Direction: direction.Normalize(),
		Intensity: intensity,
	}
}

// Color returns the light color
func (d *Directional) Color() core.Color { return d.color }

// DirectionFrom returns the constant light direction at infinite distance
func (d *Directional) DirectionFrom(core.Vec3) (core.Vec3, float32) {
	return d.Direction, math32.Inf(1)
}

// IntensityAt returns the constant intensity
func (d *Directional) IntensityAt(core.Vec3) float32 {
	return d.Intensity
}

func (d *Directional) light() {}
