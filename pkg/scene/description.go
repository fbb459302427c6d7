package scene

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/material"
)

// Description is the JSON form of a scene accepted by the web API and the
// CLI. Vectors and colors are [x, y, z] / [r, g, b] arrays.
type Description struct {
	Camera     CameraDescription              `json:"camera"`
	Width      int                            `json:"width"`
	Height     int                            `json:"height"`
	Ambient    *[3]float32                    `json:"ambient,omitempty"`
	Background *[3]float32                    `json:"background,omitempty"`
	MaxDepth   *int                           `json:"maxDepth,omitempty"`
	Output     string                         `json:"output,omitempty"`
	Materials  map[string]MaterialDescription `json:"materials,omitempty"`
	Vertices   [][3]float32                   `json:"vertices,omitempty"`
	Normals    [][3]float32                   `json:"normals,omitempty"`
	Objects    []ObjectDescription            `json:"objects"`
	Lights     []LightDescription             `json:"lights,omitempty"`
}

// CameraDescription positions the camera; HalfAngle is in degrees. An
// omitted camera keeps the default one.
type CameraDescription struct {
	Position  [3]float32 `json:"position"`
	Direction [3]float32 `json:"direction"`
	Up        [3]float32 `json:"up"`
	HalfAngle float32    `json:"halfAngle"`
}

// MaterialDescription mirrors material.Material. Missing fields take the
// default material's values.
type MaterialDescription struct {
	Ambient      *[3]float32 `json:"ambient,omitempty"`
	Diffuse      *[3]float32 `json:"diffuse,omitempty"`
	Specular     *[3]float32 `json:"specular,omitempty"`
	Phong        *float32    `json:"phong,omitempty"`
	Transmissive *[3]float32 `json:"transmissive,omitempty"`
	IOR          *float32    `json:"ior,omitempty"`
}

// ObjectDescription is one primitive. Type is "sphere", "plane" or
// "triangle"; the other fields used depend on it.
type ObjectDescription struct {
	Type     string     `json:"type"`
	Material string     `json:"material,omitempty"`
	Center   [3]float32 `json:"center,omitempty"`
	Radius   float32    `json:"radius,omitempty"`
	Point    [3]float32 `json:"point,omitempty"`
	Normal   [3]float32 `json:"normal,omitempty"`
	Vertices [3]int     `json:"vertices,omitempty"`
	Normals  *[3]int    `json:"normals,omitempty"`
}

// LightDescription is one light. Type is "directional", "point" or "spot".
type LightDescription struct {
	Type         string     `json:"type"`
	Color        [3]float32 `json:"color"`
	Position     [3]float32 `json:"position,omitempty"`
	Direction    [3]float32 `json:"direction,omitempty"`
	Intensity    float32    `json:"intensity"`
	FalloffAngle float32    `json:"falloffAngle,omitempty"`
	MaxAngle     float32    `json:"maxAngle,omitempty"`
}

// DecodeDescription reads a JSON scene description
func DecodeDescription(r io.Reader) (*Description, error) {
	var d Description
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode scene description: %w", err)
	}
	return &d, nil
}

// Build turns the description into a validated Scene
func (d *Description) Build() (*Scene, error) {
	b := NewBuilder()
	if d.Camera != (CameraDescription{}) {
		b.Camera(vec(d.Camera.Position), vec(d.Camera.Direction), vec(d.Camera.Up), d.Camera.HalfAngle)
	}
	if d.Width != 0 || d.Height != 0 {
		b.Resolution(d.Width, d.Height)
	}
	if d.Ambient != nil {
		b.Ambient(color(*d.Ambient))
	}
	if d.Background != nil {
		b.Background(color(*d.Background))
	}
	if d.MaxDepth != nil {
		b.MaxDepth(*d.MaxDepth)
	}
	b.Output(d.Output)

	for _, v := range d.Vertices {
		b.Vertex(vec(v))
	}
	for _, n := range d.Normals {
		b.Normal(vec(n))
	}

	for i, o := range d.Objects {
		mat, err := d.material(o.Material)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		b.Material(mat)

		switch o.Type {
		case "sphere":
			b.Sphere(vec(o.Center), o.Radius)
		case "plane":
			b.Plane(vec(o.Point), vec(o.Normal))
		case "triangle":
			if o.Normals != nil {
				b.NormalTriangle(o.Vertices[0], o.Vertices[1], o.Vertices[2], o.Normals[0], o.Normals[1], o.Normals[2])
			} else {
				b.Triangle(o.Vertices[0], o.Vertices[1], o.Vertices[2])
			}
		default:
			return nil, fmt.Errorf("object %d: %w: unknown object type %q", i, ErrInvalidScene, o.Type)
		}
	}

	for i, l := range d.Lights {
		switch l.Type {
		case "directional":
			b.DirectionalLight(color(l.Color), vec(l.Direction), l.Intensity)
		case "point":
			b.PointLight(color(l.Color), vec(l.Position), l.Intensity)
		case "spot":
			b.SpotLight(color(l.Color), vec(l.Position), vec(l.Direction), l.FalloffAngle, l.MaxAngle, l.Intensity)
		default:
			return nil, fmt.Errorf("light %d: %w: unknown light type %q", i, ErrInvalidScene, l.Type)
		}
	}

	return b.Build()
}

func (d *Description) material(name string) (material.Material, error) {
	m := material.Default()
	if name == "" {
		return m, nil
	}
	md, ok := d.Materials[name]
	if !ok {
		return m, fmt.Errorf("%w: unknown material %q", ErrInvalidScene, name)
	}
	if md.Ambient != nil {
		m.Ambient = color(*md.Ambient)
	}
	if md.Diffuse != nil {
		m.Diffuse = color(*md.Diffuse)
	}
	if md.Specular != nil {
		m.Specular = color(*md.Specular)
	}
	if md.Phong != nil {
		m.Phong = *md.Phong
	}
	if md.Transmissive != nil {
		m.Transmissive = color(*md.Transmissive)
	}
	if md.IOR != nil {
		m.IOR = *md.IOR
	}
	return m, nil
}

func vec(a [3]float32) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

func color(a [3]float32) core.Color {
	return core.NewColor(a[0], a[1], a[2])
}
