package arena

import (
	"fmt"
	"image/color"
	"time"

	"battle-display/pkg/anim"
	"battle-display/pkg/battle"
)

// Scene layout in the 160x144 base space
const (
	SceneW = 160
	SceneH = 144

	FrontNameStartX = 14.0
	FrontNameEndX   = 80.0
	FrontNameY      = 7.0
	BackNameEndX    = 144.0
	BackNameY       = 63.0

	NameSize    = 6.0
	ClockSize   = 24.0
	CaptionSize = 7.5

	HPBarW = 50.0
	HPBarH = 5.0
)

var faintTint = color.RGBA{255, 0, 0, 100}

// Draw renders the current frame. Call after Tick.
func (o *Orchestrator) Draw(r Renderer) {
	now := o.clock.Now()
	p := o.pose

	r.Clear()
	r.DrawBackground()

	// back first so the front sprite overlaps it
	o.drawSprite(r, battle.Back, p.BackX, p.BackY, anim.BackSpriteDim)
	o.drawSprite(r, battle.Front, p.FrontX, p.FrontY, anim.FrontSpriteDim)

	o.drawNames(r)
	o.drawHP(r)
	drawClock(r, now)

	if caption, ok := o.WinnerCaption(); ok {
		r.DrawText(caption, SceneW/2, 103, CaptionSize, AlignCenter)
	}
}

func (o *Orchestrator) drawSprite(r Renderer, side battle.Side, x, y, dim float64) {
	slot := o.state.Slot(side)
	if slot.Sprite == nil || !o.pose.Show(side) {
		return
	}
	if o.state.ProcessingEnd && slot.Health <= 0 {
		r.DrawImageTinted(slot.Sprite, x, y, dim, dim, faintTint)
		return
	}
	r.DrawImage(slot.Sprite, x, y, dim, dim)
}

func (o *Orchestrator) drawNames(r Renderer) {
	front := TrimToWidth(r, o.state.Slot(battle.Front).Name, NameSize, FrontNameEndX-FrontNameStartX)
	r.DrawText(front, FrontNameStartX, FrontNameY, NameSize, AlignTopLeft)
	r.DrawText(o.state.Slot(battle.Back).Name, BackNameEndX, BackNameY, NameSize, AlignTopRight)
}

func (o *Orchestrator) drawHP(r Renderer) {
	r.DrawText("HP", 28, 19, NameSize, AlignTopRight)
	r.DrawText("HP", 88, 78, NameSize, AlignTopRight)

	r.DrawHPBar(30, 19, HPBarW, HPBarH, o.state.Slot(battle.Front).Health)
	r.DrawHPBar(90, 78, HPBarW, HPBarH, o.state.Slot(battle.Back).Health)
}

func drawClock(r Renderer, now time.Time) {
	r.DrawText(fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute()), SceneW/2, 120, ClockSize, AlignCenter)
}

// TrimToWidth drops trailing runes until s fits in maxW
func TrimToWidth(r TextMeasurer, s string, size, maxW float64) string {
	runes := []rune(s)
	for len(runes) > 0 && r.MeasureTextWidth(string(runes), size) > maxW {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
