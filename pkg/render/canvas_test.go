package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"battle-display/pkg/arena"
	"battle-display/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPalette = Palette{
	Background: color.RGBA{10, 20, 30, 255},
	Text:       color.RGBA{0, 0, 0, 255},
	HPTrack:    color.RGBA{80, 80, 80, 255},
	HPHigh:     color.RGBA{0, 200, 0, 255},
	HPMid:      color.RGBA{200, 200, 0, 255},
	HPLow:      color.RGBA{200, 0, 0, 255},
}

func newTestCanvas(opts Options) *Canvas {
	if opts.Scale == 0 {
		opts.Scale = 2
	}
	opts.Palette = testPalette
	return NewCanvas(opts, zap.NewNop())
}

func solid(c color.Color, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestCanvasSize(t *testing.T) {
	c := newTestCanvas(Options{Scale: 3})
	w, h := c.Size()
	assert.Equal(t, 480, w)
	assert.Equal(t, 432, h)
}

func TestClearAndBackground(t *testing.T) {
	c := newTestCanvas(Options{})
	c.Clear()
	assert.Equal(t, testPalette.Background, rgba(c.Image(), 5, 5))

	bg := solid(color.RGBA{0, 0, 255, 255}, 16, 16)
	c = newTestCanvas(Options{Background: bg})
	c.Clear()
	c.DrawBackground()
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgba(c.Image(), 300, 250))
}

func TestDrawImageScales(t *testing.T) {
	c := newTestCanvas(Options{})
	c.Clear()
	red := solid(color.RGBA{255, 0, 0, 255}, 2, 2)

	c.DrawImage(red, 10, 10, 4, 4)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba(c.Image(), 20, 20))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba(c.Image(), 27, 27))
	assert.Equal(t, testPalette.Background, rgba(c.Image(), 28, 28))

	c.DrawImage(red, 50, 50, 4, 4)
	assert.Len(t, c.sprites, 1, "same image and size reuse the resized copy")
}

func TestDrawImageTinted(t *testing.T) {
	c := newTestCanvas(Options{})
	c.Clear()
	white := solid(color.RGBA{255, 255, 255, 255}, 2, 2)

	c.DrawImageTinted(white, 0, 0, 2, 2, color.RGBA{255, 0, 0, 100})
	px := rgba(c.Image(), 1, 1)
	assert.GreaterOrEqual(t, px.R, uint8(254))
	assert.Less(t, px.G, uint8(200))
	assert.Equal(t, px.G, px.B)

	c.DrawImage(white, 0, 0, 2, 2)
	assert.Len(t, c.sprites, 2)
}

func TestDrawHPBar(t *testing.T) {
	cases := []struct {
		name string
		pct  float64
		want color.RGBA
	}{
		{"full", 1, testPalette.HPHigh},
		{"mid", 0.4, testPalette.HPMid},
		{"low", 0.15, testPalette.HPLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCanvas(Options{})
			c.Clear()
			c.DrawHPBar(30, 19, 50, 5, tc.pct)
			// left end is always filled, far right only when full
			assert.Equal(t, tc.want, rgba(c.Image(), 70, 43))
			if tc.pct < 1 {
				assert.Equal(t, testPalette.HPTrack, rgba(c.Image(), 150, 43))
			}
		})
	}

	c := newTestCanvas(Options{})
	c.Clear()
	c.DrawHPBar(30, 19, 50, 5, 0)
	assert.Equal(t, testPalette.HPTrack, rgba(c.Image(), 70, 43))
}

func TestDrawHPBarFillIsProportional(t *testing.T) {
	c := newTestCanvas(Options{})
	c.Clear()
	// 4% of a 100px bar is 4px: x 60..64
	c.DrawHPBar(30, 19, 50, 5, 0.04)
	assert.Equal(t, testPalette.HPLow, rgba(c.Image(), 62, 43))
	assert.Equal(t, testPalette.HPTrack, rgba(c.Image(), 66, 43))
}

func TestMeasureFallbackFont(t *testing.T) {
	c := newTestCanvas(Options{FontPath: "/does/not/exist.ttf"})
	// basicfont advances 7px per glyph; scale 2 halves it in scene units
	assert.InDelta(t, 14.0, c.MeasureTextWidth("abcd", 6), 1e-9)
	assert.Equal(t, "abcd", arena.TrimToWidth(c, "abcdefgh", 6, 15))
}

func TestPNG(t *testing.T) {
	c := newTestCanvas(Options{})
	c.Clear()
	c.DrawText("12:00", arena.SceneW/2, 120, 24, arena.AlignCenter)

	b, err := c.PNG()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 288), img.Bounds())
}

func TestAnchor(t *testing.T) {
	ax, ay := anchor(arena.AlignTopLeft)
	assert.Equal(t, [2]float64{0, 1}, [2]float64{ax, ay})
	ax, ay = anchor(arena.AlignTopRight)
	assert.Equal(t, [2]float64{1, 1}, [2]float64{ax, ay})
	ax, ay = anchor(arena.AlignCenter)
	assert.Equal(t, [2]float64{0.5, 0.5}, [2]float64{ax, ay})
}

func TestPaletteFrom(t *testing.T) {
	p := PaletteFrom(config.Default().Colors)
	assert.Equal(t, color.RGBA{0x30, 0xc0, 0x60, 0xff}, p.HPHigh)
}
