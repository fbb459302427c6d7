// Package postprocess applies image filters to rendered frames before they
// are written out.
package postprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Filter transforms an image into a new one. The input is never modified.
type Filter func(image.Image) *image.NRGBA

// Luminance weights used by Grayscale
const (
	lumaR = 0.3
	lumaG = 0.6
	lumaB = 0.1
)

// Apply runs the filters left to right. With no filters the result is an
// NRGBA copy of img.
func Apply(img image.Image, filters ...Filter) *image.NRGBA {
	out := imaging.Clone(img)
	for _, f := range filters {
		out = f(out)
	}
	return out
}

// Blur performs a Gaussian blur with the given standard deviation
func Blur(sigma float64) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.Blur(img, sigma)
	}
}

// Sharpen subtracts a Gaussian blur of the given standard deviation
func Sharpen(sigma float64) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.Sharpen(img, sigma)
	}
}

// Grayscale replaces each pixel by its weighted luminance
func Grayscale() Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			l := clamp8(lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B))
			return color.NRGBA{R: l, G: l, B: l, A: c.A}
		})
	}
}

// Brighten multiplies every color channel by factor
func Brighten(factor float64) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: clamp8(float64(c.R) * factor),
				G: clamp8(float64(c.G) * factor),
				B: clamp8(float64(c.B) * factor),
				A: c.A,
			}
		})
	}
}

// Contrast changes contrast by percentage in [-100, 100]
func Contrast(percentage float64) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.AdjustContrast(img, percentage)
	}
}

// Saturation changes saturation by percentage in [-100, 100]
func Saturation(percentage float64) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.AdjustSaturation(img, percentage)
	}
}

// Gamma applies gamma correction; 1 leaves the image unchanged
func Gamma(gamma float64) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.AdjustGamma(img, gamma)
	}
}

// Invert produces the negative of the image
func Invert() Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.Invert(img)
	}
}

// Channel keeps one color channel (0 red, 1 green, 2 blue) and zeroes the
// other two
func Channel(channel int) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			out := color.NRGBA{A: c.A}
			switch channel {
			case 0:
				out.R = c.R
			case 1:
				out.G = c.G
			case 2:
				out.B = c.B
			}
			return out
		})
	}
}

// Crop cuts out the rectangle with its top left corner at (x, y)
func Crop(x, y, width, height int) Filter {
	return func(img image.Image) *image.NRGBA {
		origin := img.Bounds().Min
		return imaging.Crop(img, image.Rect(x, y, x+width, y+height).Add(origin))
	}
}

// Rotate turns the image counter-clockwise by degrees, filling uncovered
// corners with black
func Rotate(degrees float64) Filter {
	return func(img image.Image) *image.NRGBA {
		return imaging.Rotate(img, degrees, color.Black)
	}
}

// Scale resizes the image by independent factors along each axis
func Scale(fx, fy float64) Filter {
	return func(img image.Image) *image.NRGBA {
		b := img.Bounds()
		width := max(1, int(math.Round(float64(b.Dx())*fx)))
		height := max(1, int(math.Round(float64(b.Dy())*fy)))
		return imaging.Resize(img, width, height, imaging.Linear)
	}
}

// EdgeDetect highlights edges with a Sobel operator over both axes
func EdgeDetect() Filter {
	horizontal := [9]float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}
	vertical := [9]float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}
	return func(img image.Image) *image.NRGBA {
		opts := &imaging.ConvolveOptions{Abs: true}
		gx := imaging.Convolve3x3(img, horizontal, opts)
		gy := imaging.Convolve3x3(img, vertical, opts)
		return imaging.Overlay(gx, gy, image.Pt(0, 0), 0.5)
	}
}

// Quantize rounds every channel to the nearest of 2^bits evenly spaced
// levels
func Quantize(bits int) Filter {
	levels := levelsFor(bits)
	return func(img image.Image) *image.NRGBA {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: quantizeChannel(float64(c.R), levels),
				G: quantizeChannel(float64(c.G), levels),
				B: quantizeChannel(float64(c.B), levels),
				A: c.A,
			}
		})
	}
}

// FloydSteinberg quantizes like Quantize and diffuses each pixel's error onto
// its unvisited neighbours. Pixels are visited row by row.
func FloydSteinberg(bits int) Filter {
	levels := levelsFor(bits)
	return func(img image.Image) *image.NRGBA {
		src := imaging.Clone(img)
		w, h := src.Bounds().Dx(), src.Bounds().Dy()

		// Working copy in floats so diffused error can exceed [0, 255]
		work := make([][3]float64, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := src.NRGBAAt(x, y)
				work[y*w+x] = [3]float64{float64(c.R), float64(c.G), float64(c.B)}
			}
		}

		spread := func(x, y int, errs [3]float64, weight float64) {
			if x < 0 || x >= w || y < 0 || y >= h {
				return
			}
			p := &work[y*w+x]
			for i := range p {
				p[i] += errs[i] * weight
			}
		}

		out := imaging.New(w, h, color.Black)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				old := work[y*w+x]
				var q [3]uint8
				var errs [3]float64
				for i := range old {
					q[i] = quantizeChannel(old[i], levels)
					errs[i] = old[i] - float64(q[i])
				}
				out.SetNRGBA(x, y, color.NRGBA{R: q[0], G: q[1], B: q[2], A: src.NRGBAAt(x, y).A})

				spread(x+1, y, errs, 7.0/16)
				spread(x-1, y+1, errs, 3.0/16)
				spread(x, y+1, errs, 5.0/16)
				spread(x+1, y+1, errs, 1.0/16)
			}
		}
		return out
	}
}

func levelsFor(bits int) float64 {
	bits = min(max(bits, 1), 8)
	return math.Exp2(float64(bits)) - 1
}

// quantizeChannel snaps an 8-bit channel value to the nearest level
func quantizeChannel(v, levels float64) uint8 {
	n := math.Round(clampUnit(v/255)*levels) / levels
	return clamp8(n * 255)
}

func clampUnit(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func clamp8(v float64) uint8 {
	return uint8(math.Round(math.Min(255, math.Max(0, v))))
}
