package renderer

import (
	"image"
	"image/color"
)

// Image is a row-major RGB8 pixel buffer
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // 3 bytes per pixel, row by row from the top left
}

// NewImage allocates a black image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

func (img *Image) offset(x, y int) int {
	return (y*img.Width + x) * 3
}

// At returns the pixel at (x, y)
func (img *Image) At(x, y int) [3]uint8 {
	i := img.offset(x, y)
	return [3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}
}

// Set writes the pixel at (x, y)
func (img *Image) Set(x, y int, rgb [3]uint8) {
	i := img.offset(x, y)
	img.Pix[i] = rgb[0]
	img.Pix[i+1] = rgb[1]
	img.Pix[i+2] = rgb[2]
}

// ToRGBA converts to an opaque *image.RGBA for encoders and filters
func (img *Image) ToRGBA() *image.RGBA {
	return img.SubImage(image.Rect(0, 0, img.Width, img.Height))
}

// SubImage copies the pixels within bounds into a new opaque *image.RGBA
// whose bounds match the requested rectangle.
func (img *Image) SubImage(bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, img.Width, img.Height))
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := img.At(x, y)
			rgba.SetRGBA(x, y, color.RGBA{R: p[0], G: p[1], B: p[2], A: 255})
		}
	}
	return rgba
}
