package lights

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/df07/go-direct-raytracer/pkg/core"
)

const tolerance = 1e-5

func TestDirectional(t *testing.T) {
	light := NewDirectional(core.White, core.NewVec3(0, 2, 0), 0.7)

	direction, distance := light.DirectionFrom(core.NewVec3(5, -3, 2))
	if direction.Subtract(core.NewVec3(0, 1, 0)).Length() > tolerance {
		t.Errorf("Expected normalized direction (0,1,0), got %v", direction)
	}
	if !math32.IsInf(distance, 1) {
		t.Errorf("Expected infinite distance, got %f", distance)
	}

	for _, p := range []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(100, 100, 100)} {
		if intensity := light.IntensityAt(p); intensity != 0.7 {
			t.Errorf("Expected constant intensity 0.7 at %v, got %f", p, intensity)
		}
	}
	if light.Color() != core.White {
		t.Errorf("Expected white, got %v", light.Color())
	}
}

func TestPoint_DirectionFrom(t *testing.T) {
	light := NewPoint(core.White, core.NewVec3(0, 4, 0), 1)

	direction, distance := light.DirectionFrom(core.NewVec3(0, 1, 0))
	if direction.Subtract(core.NewVec3(0, 1, 0)).Length() > tolerance {
		t.Errorf("Expected direction (0,1,0), got %v", direction)
	}
	if math32.Abs(distance-3) > tolerance {
		t.Errorf("Expected distance 3, got %f", distance)
	}

	// Walking the returned distance along the direction reaches the light
	point := core.NewVec3(2, -1, 3)
	direction, distance = light.DirectionFrom(point)
	reached := core.NewRay(point, direction).At(distance)
	if reached.Subtract(light.Position).Length() > 1e-4 {
		t.Errorf("Expected to reach light at %v, got %v", light.Position, reached)
	}
}

func TestPoint_IntensityAt(t *testing.T) {
	light := NewPoint(core.White, core.NewVec3(0, 0, 0), 2)

	tests := []struct {
		name     string
		point    core.Vec3
		expected float32
	}{
		{"distance 1", core.NewVec3(1, 0, 0), 20},
		{"distance 2", core.NewVec3(0, 2, 0), 5},
		{"distance 10", core.NewVec3(0, 0, 10), 0.2},
		{"at the light", core.NewVec3(0, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := light.IntensityAt(tt.point)
			if math32.Abs(got-tt.expected) > tolerance {
				t.Errorf("Expected intensity %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestSpot_IntensityAt(t *testing.T) {
	// Spot at origin pointing down -Y, full intensity within 20°, dark past 40°
	light := NewSpot(core.White, core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0), 3, 20, 40)

	pointAtAngle := func(degrees float32) core.Vec3 {
		rad := degrees * math32.Pi / 180
		return core.NewVec3(math32.Sin(rad), -math32.Cos(rad), 0).Multiply(5)
	}

	tests := []struct {
		name     string
		angle    float32
		expected func(float32) bool
	}{
		{"on axis", 0, func(i float32) bool { return math32.Abs(i-3) < tolerance }},
		{"inside inner cone", 15, func(i float32) bool { return math32.Abs(i-3) < tolerance }},
		{"in falloff band", 30, func(i float32) bool { return i > 0 && i < 3 }},
		{"past max angle", 45, func(i float32) bool { return i == 0 }},
		{"behind the light", 180, func(i float32) bool { return i == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := light.IntensityAt(pointAtAngle(tt.angle))
			if !tt.expected(got) {
				t.Errorf("Unexpected intensity %f at %f degrees", got, tt.angle)
			}
		})
	}
}

func TestSpot_FalloffIsMonotonic(t *testing.T) {
	light := NewSpot(core.White, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1, 10, 50)

	previous := float32(2)
	for degrees := float32(0); degrees <= 60; degrees += 2 {
		rad := degrees * math32.Pi / 180
		p := core.NewVec3(math32.Sin(rad), 0, math32.Cos(rad))
		intensity := light.IntensityAt(p)
		if intensity > previous+tolerance {
			t.Errorf("Intensity increased from %f to %f at %f degrees", previous, intensity, degrees)
		}
		previous = intensity
	}
	if previous != 0 {
		t.Errorf("Expected zero intensity at 60 degrees, got %f", previous)
	}
}

func TestSpot_HardEdge(t *testing.T) {
	light := NewSpot(core.White, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1, 30, 30)

	inside := core.NewVec3(math32.Sin(0.4), 0, math32.Cos(0.4)) // ~23°
	outside := core.NewVec3(math32.Sin(0.6), 0, math32.Cos(0.6)) // ~34°

	if got := light.IntensityAt(inside); got != 1 {
		t.Errorf("Expected full intensity inside hard edge, got %f", got)
	}
	if got := light.IntensityAt(outside); got != 0 {
		t.Errorf("Expected no intensity outside hard edge, got %f", got)
	}
}

func TestSpot_DirectionFrom(t *testing.T) {
	light := NewSpot(core.White, core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0), 1, 10, 20)

	direction, distance := light.DirectionFrom(core.NewVec3(0, 0, 0))
	if direction.Subtract(core.NewVec3(0, 1, 0)).Length() > tolerance {
		t.Errorf("Expected direction (0,1,0), got %v", direction)
	}
	if math32.Abs(distance-10) > tolerance {
		t.Errorf("Expected distance 10, got %f", distance)
	}
	if got := light.IntensityAt(light.Position); got != 0 {
		t.Errorf("Expected zero intensity at the light position, got %f", got)
	}
}
