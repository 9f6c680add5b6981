package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	AtlasSize   = 512
	atlasMargin = 2
	atlasGap    = 4
)

type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// TextItem is one HUD label. Position is in pixels from the top-left corner.
type TextItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type glyph struct {
	uvMin   [2]float32
	uvMax   [2]float32
	size    [2]float32
	bearing [2]float32
	advance float32
}

// TextRenderer rasterises printable ASCII into a single alpha atlas and turns
// HUD labels into clip-space quads.
type TextRenderer struct {
	Atlas  *image.Alpha
	glyphs map[rune]glyph
	ascent float32
	line   float32
}

// NewDefaultTextRenderer uses the embedded Go Regular face, so the HUD never
// depends on a font on disk.
func NewDefaultTextRenderer(fontSize float64) (*TextRenderer, error) {
	return NewTextRenderer(goregular.TTF, fontSize)
}

func NewTextRenderer(ttf []byte, fontSize float64) (*TextRenderer, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	tr := &TextRenderer{
		Atlas:  image.NewAlpha(image.Rect(0, 0, AtlasSize, AtlasSize)),
		glyphs: make(map[rune]glyph, 95),
		ascent: float32(metrics.Ascent.Ceil()),
		line:   float32(metrics.Height.Ceil()),
	}
	tr.pack(face)
	return tr, nil
}

func (tr *TextRenderer) pack(face font.Face) {
	x, y, rowHeight := atlasMargin, atlasMargin, 0
	for r := rune(' '); r <= '~'; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
		if x+w >= AtlasSize {
			x = atlasMargin
			y += rowHeight + atlasGap
			rowHeight = 0
		}
		if y+h >= AtlasSize {
			return
		}
		draw.Draw(tr.Atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)
		tr.glyphs[r] = glyph{
			uvMin:   [2]float32{float32(x) / AtlasSize, float32(y) / AtlasSize},
			uvMax:   [2]float32{float32(x+w) / AtlasSize, float32(y+h) / AtlasSize},
			size:    [2]float32{float32(w), float32(h)},
			bearing: [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			advance: float32(adv) / 64,
		}
		x += w + atlasGap
		if h > rowHeight {
			rowHeight = h
		}
	}
}

func (tr *TextRenderer) HasGlyph(r rune) bool {
	_, ok := tr.glyphs[r]
	return ok
}

func (tr *TextRenderer) LineHeight(scale float32) float32 {
	return tr.line * scale
}

// Layout appends six vertices per visible glyph to dst.
func (tr *TextRenderer) Layout(dst []TextVertex, items []TextItem, screenW, screenH int) []TextVertex {
	if screenW <= 0 || screenH <= 0 {
		return dst
	}
	sw, sh := float32(screenW), float32(screenH)
	toClip := func(px, py float32) [2]float32 {
		return [2]float32{px/sw*2 - 1, 1 - py/sh*2}
	}
	for _, item := range items {
		s := item.Scale
		if s == 0 {
			s = 1
		}
		penX := item.Position[0]
		penY := item.Position[1] + tr.ascent*s
		for _, r := range item.Text {
			if r == '\n' {
				penX = item.Position[0]
				penY += tr.line * s
				continue
			}
			g, ok := tr.glyphs[r]
			if !ok {
				continue
			}
			p0 := toClip(penX+g.bearing[0]*s, penY+g.bearing[1]*s)
			p1 := toClip(penX+(g.bearing[0]+g.size[0])*s, penY+(g.bearing[1]+g.size[1])*s)
			tl := TextVertex{Pos: p0, UV: g.uvMin, Color: item.Color}
			tr_ := TextVertex{Pos: [2]float32{p1[0], p0[1]}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: item.Color}
			bl := TextVertex{Pos: [2]float32{p0[0], p1[1]}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: item.Color}
			br := TextVertex{Pos: p1, UV: g.uvMax, Color: item.Color}
			dst = append(dst, tl, tr_, bl, tr_, br, bl)
			penX += g.advance * s
		}
	}
	return dst
}

// Measure returns the pixel width of the widest line and the total height.
func (tr *TextRenderer) Measure(text string, scale float32) (float32, float32) {
	var maxW, w float32
	lines := 1
	for _, r := range text {
		if r == '\n' {
			maxW = max(maxW, w)
			w = 0
			lines++
			continue
		}
		if g, ok := tr.glyphs[r]; ok {
			w += g.advance * scale
		}
	}
	return max(maxW, w), tr.line * scale * float32(lines)
}
