package render

import (
	"image"
	"image/color"
	"math"

	"battle-display/pkg/arena"
	"battle-display/pkg/config"
	"battle-display/pkg/utils"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// MAX_CACHED bounds the resized-sprite cache; it is flushed when full
const MAX_CACHED = 64

type Palette struct {
	Background color.RGBA
	Text       color.RGBA
	HPTrack    color.RGBA
	HPHigh     color.RGBA
	HPMid      color.RGBA
	HPLow      color.RGBA
}

func PaletteFrom(c config.Colors) Palette {
	return Palette{
		Background: utils.ParseHexColor(c.Background),
		Text:       utils.ParseHexColor(c.Text),
		HPTrack:    utils.ParseHexColor(c.HPTrack),
		HPHigh:     utils.ParseHexColor(c.HPHigh),
		HPMid:      utils.ParseHexColor(c.HPMid),
		HPLow:      utils.ParseHexColor(c.HPLow),
	}
}

type Options struct {
	Scale      int
	Background image.Image
	FontPath   string
	Palette    Palette
}

type spriteKey struct {
	img    image.Image
	w, h   int
	tint   color.RGBA
	tinted bool
}

// Canvas is the arena.Renderer on a gg context. Callers draw in the
// 160x144 scene space; everything is multiplied by Scale on the way in.
type Canvas struct {
	dc         *gg.Context
	scale      float64
	background image.Image
	palette    Palette
	fontPath   string
	faces      map[float64]font.Face
	sprites    map[spriteKey]image.Image
	log        *zap.Logger
}

var _ arena.Renderer = (*Canvas)(nil)

func NewCanvas(opts Options, log *zap.Logger) *Canvas {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	w, h := arena.SceneW*opts.Scale, arena.SceneH*opts.Scale

	c := &Canvas{
		dc:       gg.NewContext(w, h),
		scale:    float64(opts.Scale),
		palette:  opts.Palette,
		fontPath: opts.FontPath,
		faces:    make(map[float64]font.Face),
		sprites:  make(map[spriteKey]image.Image),
		log:      log.Named("render"),
	}
	if opts.Background != nil {
		c.background = imaging.Fill(opts.Background, w, h, imaging.Center, imaging.Lanczos)
	}
	return c
}

func (c *Canvas) Size() (int, int)   { return c.dc.Width(), c.dc.Height() }
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// PNG encodes the current frame
func (c *Canvas) PNG() ([]byte, error) {
	return utils.EncodeImageToBuffer(c.dc.Image())
}

func (c *Canvas) Clear() {
	c.dc.SetColor(c.palette.Background)
	c.dc.Clear()
}

func (c *Canvas) DrawBackground() {
	if c.background == nil {
		return
	}
	c.dc.DrawImage(c.background, 0, 0)
}

func (c *Canvas) DrawImage(img image.Image, x, y, w, h float64) {
	sprite := c.sprite(spriteKey{img: img, w: c.px(w), h: c.px(h)})
	c.dc.DrawImage(sprite, c.px(x), c.px(y))
}

func (c *Canvas) DrawImageTinted(img image.Image, x, y, w, h float64, tint color.RGBA) {
	sprite := c.sprite(spriteKey{img: img, w: c.px(w), h: c.px(h), tint: tint, tinted: true})
	c.dc.DrawImage(sprite, c.px(x), c.px(y))
}

// sprite resizes (and tints) once per source image and size
func (c *Canvas) sprite(key spriteKey) image.Image {
	if img, ok := c.sprites[key]; ok {
		return img
	}
	if len(c.sprites) >= MAX_CACHED {
		c.sprites = make(map[spriteKey]image.Image)
	}

	img := image.Image(imaging.Resize(key.img, key.w, key.h, imaging.NearestNeighbor))
	if key.tinted {
		img = utils.TintImage(img, key.tint)
	}
	c.sprites[key] = img
	return img
}

func (c *Canvas) DrawText(s string, x, y, size float64, align arena.Align) {
	ax, ay := anchor(align)
	c.dc.SetFontFace(c.face(size))
	c.dc.SetColor(c.palette.Text)
	c.dc.DrawStringAnchored(s, x*c.scale, y*c.scale, ax, ay)
}

// MeasureTextWidth answers in scene units
func (c *Canvas) MeasureTextWidth(s string, size float64) float64 {
	c.dc.SetFontFace(c.face(size))
	w, _ := c.dc.MeasureString(s)
	return w / c.scale
}

// DrawHPBar draws a pill-shaped track and a fill coloured by remaining health
func (c *Canvas) DrawHPBar(x, y, w, h, pct float64) {
	x, y, w, h = x*c.scale, y*c.scale, w*c.scale, h*c.scale

	c.dc.SetColor(c.palette.HPTrack)
	c.dc.DrawRoundedRectangle(x, y, w, h, h/2)
	c.dc.Fill()

	pct = math.Max(0, math.Min(1, pct))
	if pct <= 0 {
		return
	}
	// the fill is exactly pct of the bar; short fills get tighter corners
	fill := w * pct
	c.dc.SetColor(c.hpColor(pct))
	c.dc.DrawRoundedRectangle(x, y, fill, h, math.Min(h/2, fill/2))
	c.dc.Fill()
}

func (c *Canvas) hpColor(pct float64) color.RGBA {
	switch {
	case pct > 0.5:
		return c.palette.HPHigh
	case pct > 0.2:
		return c.palette.HPMid
	default:
		return c.palette.HPLow
	}
}

// face loads the configured font at size, falling back to basicfont when
// there is none or it fails to load
func (c *Canvas) face(size float64) font.Face {
	if f, ok := c.faces[size]; ok {
		return f
	}

	var f font.Face = basicfont.Face7x13
	if c.fontPath != "" {
		loaded, err := utils.LoadFont(c.fontPath, size*c.scale)
		if err != nil {
			c.log.Warn("font unavailable, using fallback", zap.String("path", c.fontPath), zap.Error(err))
		} else {
			f = loaded
		}
	}
	c.faces[size] = f
	return f
}

func (c *Canvas) px(v float64) int { return int(math.Round(v * c.scale)) }

func anchor(a arena.Align) (float64, float64) {
	switch a {
	case arena.AlignTopRight:
		return 1, 1
	case arena.AlignCenter:
		return 0.5, 0.5
	default:
		return 0, 1
	}
}
