package core

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Color is a linear RGB color. Channels are non-negative and unbounded
// above while shading; ToneMap brings them into [0,1] for display.
type Color struct {
	R, G, B float32
}

var (
	// Black is the zero color
	Black = Color{0, 0, 0}
	// White is full intensity on every channel
	White = Color{1, 1, 1}
)

// NewColor creates a new Color
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b}
}

// Add returns the channel-wise sum of two colors
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// MultiplyColor returns the channel-wise product of two colors
func (c Color) MultiplyColor(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B}
}

// Scale multiplies every channel by a scalar
func (c Color) Scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f}
}

// Clamp returns the color with every channel clamped to [lo, hi]
func (c Color) Clamp(lo, hi float32) Color {
	return Color{
		R: max(lo, min(hi, c.R)),
		G: max(lo, min(hi, c.G)),
		B: max(lo, min(hi, c.B)),
	}
}

// IsBlack reports whether every channel is zero
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// ToneMap divides all channels by max(1, R, G, B). Colors already inside
// [0,1] are returned unchanged; overexposed colors keep their hue instead
// of being clipped per channel. Infinite channels map to 1 and the finite
// ones to 0.
func (c Color) ToneMap() Color {
	scale := max(1.0, c.R, c.G, c.B)
	if scale == 1 {
		return c
	}
	if math32.IsInf(scale, 1) {
		return Color{infToUnit(c.R), infToUnit(c.G), infToUnit(c.B)}
	}
	return Color{c.R / scale, c.G / scale, c.B / scale}
}

func infToUnit(v float32) float32 {
	if math32.IsInf(v, 1) {
		return 1
	}
	return 0
}

// ToRGB8 quantizes a tone-mapped color to 8 bits per channel by truncation.
// It panics if a channel is outside [0,1] or NaN.
func (c Color) ToRGB8() [3]uint8 {
	return [3]uint8{quantize(c.R), quantize(c.G), quantize(c.B)}
}

func quantize(v float32) uint8 {
	if math32.IsNaN(v) || v < 0 || v > 1 {
		panic(fmt.Sprintf("core: color channel %v outside [0,1] after tone mapping", v))
	}
	return uint8(math32.Floor(v * 255))
}

func (c Color) String() string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", c.R, c.G, c.B)
}
