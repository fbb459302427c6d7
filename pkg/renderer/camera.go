package renderer

import (
	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

// Camera generates one primary ray per pixel from a scene's camera settings
type Camera struct {
	origin    core.Vec3
	direction core.Vec3
	right     core.Vec3
	up        core.Vec3
	halfTan   float32
	aspect    float32
	width     float32
	height    float32
}

// NewCamera captures the camera of a scene
func NewCamera(s *scene.Scene) *Camera {
	return &Camera{
		origin:    s.CameraPosition,
		direction: s.CameraDirection,
		right:     s.CameraRight(),
		up:        s.CameraUp,
		halfTan:   s.CameraHalfAngleTan,
		aspect:    s.AspectRatio(),
		width:     float32(s.Width),
		height:    float32(s.Height),
	}
}

// GetRay returns the ray through pixel (x, y), with (0, 0) at the top left.
// The direction is the camera direction offset in the image plane and is not
// normalized.
func (c *Camera) GetRay(x, y int) core.Ray {
	ndcX := (2*float32(x)/c.width - 1) * c.halfTan * c.aspect
	ndcY := (1 - 2*float32(y)/c.height) * c.halfTan

	direction := c.direction.
		Add(c.right.Multiply(ndcX)).
		Add(c.up.Multiply(ndcY))

	return core.NewRay(c.origin, direction)
}
