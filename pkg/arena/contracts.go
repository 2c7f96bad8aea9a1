package arena

import (
	"image"
	"image/color"
	"time"
)

// Loader fetches a sprite asynchronously and calls done exactly once
type Loader interface {
	Load(path string, done func(image.Image, error))
}

type Clock interface {
	Now() time.Time
}

// Random is satisfied by *rand.Rand
type Random interface {
	Float64() float64
	Intn(n int) int
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Align int

const (
	AlignTopLeft Align = iota
	AlignTopRight
	AlignCenter
)

type TextMeasurer interface {
	MeasureTextWidth(s string, size float64) float64
}

// Renderer draws in the 160x144 scene space. Scaling to the output size is
// the renderer's business.
type Renderer interface {
	Clear()
	DrawBackground()
	DrawImage(img image.Image, x, y, w, h float64)
	DrawImageTinted(img image.Image, x, y, w, h float64, tint color.RGBA)
	DrawText(s string, x, y, size float64, align Align)
	DrawHPBar(x, y, w, h, pct float64)
	TextMeasurer
}
