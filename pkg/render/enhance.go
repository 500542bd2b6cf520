package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Enhance brightens and then adds contrast to img. A factor only takes
// effect when it is greater than 1.0; neutral or lower factors leave the
// image untouched.
//
// Brightness scales every channel. Contrast pushes every channel away from
// the image's mean luminance.
func Enhance(img image.Image, brightness, contrast float64) *image.NRGBA {
	out := imaging.Clone(img)
	if brightness > 1.0 {
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: clamp8(float64(c.R) * brightness),
				G: clamp8(float64(c.G) * brightness),
				B: clamp8(float64(c.B) * brightness),
				A: c.A,
			}
		})
	}
	if contrast > 1.0 {
		mean := meanLuminance(out)
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: clamp8(mean + (float64(c.R)-mean)*contrast),
				G: clamp8(mean + (float64(c.G)-mean)*contrast),
				B: clamp8(mean + (float64(c.B)-mean)*contrast),
				A: c.A,
			}
		})
	}
	return out
}

// meanLuminance returns the mean ITU-R 601 luma, rounded to an integer.
func meanLuminance(img *image.NRGBA) float64 {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var sum int64
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			sum += (int64(row[i])*299 + int64(row[i+1])*587 + int64(row[i+2])*114) / 1000
		}
	}
	return float64((sum + int64(n)/2) / int64(n))
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
