package material

import "github.com/df07/go-direct-raytracer/pkg/core"

// Material describes how a surface reacts to light. It is a plain value and
// is copied into every object that uses it.
//
// Only Ambient and Diffuse take part in shading today. Specular, Phong,
// Transmissive and IOR are carried so scenes keep their full description for
// a recursive tracer.
type Material struct {
	Ambient      core.Color // Reflectance of the scene's ambient light
	Diffuse      core.Color // Lambertian reflectance of direct light
	Specular     core.Color // Specular reflectance
	Phong        float32    // Phong cosine power for specular highlights
	Transmissive core.Color // Transmitted color
	IOR          float32    // Index of refraction
}

// Default returns the material used when a scene does not specify one:
// white diffuse, no ambient, specular or transmission.
func Default() Material {
	return Material{
		Ambient:      core.Black,
		Diffuse:      core.White,
		Specular:     core.Black,
		Phong:        5.0,
		Transmissive: core.Black,
		IOR:          1.0,
	}
}

// NewDiffuse returns the default material with the given diffuse color
func NewDiffuse(diffuse core.Color) Material {
	m := Default()
	m.Diffuse = diffuse
	return m
}
