package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// ParseHexColor converts "#rrggbb" or "#rrggbbaa" to color.RGBA.
// Anything else yields opaque black.
func ParseHexColor(s string) color.RGBA {
	c := color.RGBA{0, 0, 0, 255}
	switch len(s) {
	case 7:
		fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	}
	return c
}

// TintImage blends tint over every non-transparent pixel (fainted sprites)
func TintImage(img image.Image, tint color.RGBA) image.Image {
	alpha := float64(tint.A) / 255.0
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.A == 0 {
			return c
		}
		return color.NRGBA{
			R: blend(c.R, tint.R, alpha),
			G: blend(c.G, tint.G, alpha),
			B: blend(c.B, tint.B, alpha),
			A: c.A,
		}
	})
}

func blend(base, over uint8, alpha float64) uint8 {
	return uint8(float64(base)*(1-alpha) + float64(over)*alpha)
}

// EncodeImageToBuffer returns PNG bytes
func EncodeImageToBuffer(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
