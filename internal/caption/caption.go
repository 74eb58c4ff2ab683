// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package caption draws short text labels onto rendered frames.
//
// Text is shaped with go-text/typesetting (HarfBuzz) for kerning, in the
// direction x/text/unicode/bidi reports for it, then rasterized glyph by
// glyph with golang.org/x/image's OpenType face. Labels use the embedded Go
// Regular font.
package caption

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// DefaultSize is the font size in pixels used by New when size <= 0.
const DefaultSize = 14

// Glyph is one shaped glyph: the source rune and its pen position relative
// to the start of the baseline.
type Glyph struct {
	Rune rune
	X, Y fixed.Int26_6
}

// Caption shapes and draws single-line labels at a fixed size. It is safe for
// concurrent use.
type Caption struct {
	mu     sync.Mutex
	shaper shaping.HarfbuzzShaper
	font   *font.Font
	face   xfont.Face
	size   fixed.Int26_6
}

// New returns a Caption using Go Regular at size pixels.
func New(size float64) (*Caption, error) {
	if size <= 0 {
		size = DefaultSize
	}

	parsed, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("caption: parse font for shaping: %w", err)
	}
	otf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("caption: parse font for drawing: %w", err)
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("caption: create face: %w", err)
	}

	return &Caption{
		font: parsed.Font,
		face: face,
		size: fixed.Int26_6(size * 64),
	}, nil
}

// Close releases the rasterizer face.
func (c *Caption) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.face.Close()
}

// Shape returns the positioned glyphs of text.
func (c *Caption) Shape(text string) []Glyph {
	c.mu.Lock()
	defer c.mu.Unlock()
	glyphs, _ := c.shapeLocked(text)
	return glyphs
}

func (c *Caption) shapeLocked(text string) ([]Glyph, fixed.Int26_6) {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, 0
	}
	out := c.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: baseDirection(text),
		Face:      font.NewFace(c.font),
		Size:      c.size,
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	})

	glyphs := make([]Glyph, 0, len(out.Glyphs))
	var pen fixed.Int26_6
	for _, g := range out.Glyphs {
		if i := g.TextIndex(); i >= 0 && i < len(runes) {
			glyphs = append(glyphs, Glyph{
				Rune: runes[i],
				X:    pen + g.XOffset,
				Y:    -g.YOffset,
			})
		}
		pen += g.Advance
	}
	return glyphs, pen
}

// Measure returns the pixel size of the box Draw fills for text.
func (c *Caption) Measure(text string) image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, advance := c.shapeLocked(text)
	m := c.face.Metrics()
	return image.Pt(advance.Ceil(), (m.Ascent + m.Descent).Ceil())
}

// Draw paints text onto dst with the top-left corner of its line box at
// (x, y) and returns the drawn rectangle. Glyphs outside dst are clipped.
func (c *Caption) Draw(dst draw.Image, x, y int, text string, col color.Color) image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()

	glyphs, advance := c.shapeLocked(text)
	m := c.face.Metrics()
	origin := fixed.P(x, y).Add(fixed.Point26_6{Y: m.Ascent})

	d := xfont.Drawer{Dst: dst, Src: image.NewUniform(col), Face: c.face}
	for _, g := range glyphs {
		d.Dot = origin.Add(fixed.Point26_6{X: g.X, Y: g.Y})
		d.DrawString(string(g.Rune))
	}
	return image.Rect(x, y, x+advance.Ceil(), y+(m.Ascent+m.Descent).Ceil())
}

// DrawLabel paints text over a translucent dark box with padding pad, so the
// label stays readable on any background.
func (c *Caption) DrawLabel(dst draw.Image, x, y, pad int, text string) image.Rectangle {
	size := c.Measure(text)
	box := image.Rect(x, y, x+size.X+2*pad, y+size.Y+2*pad)
	draw.Draw(dst, box, image.NewUniform(color.NRGBA{A: 0xa0}), image.Point{}, draw.Over)
	c.Draw(dst, x+pad, y+pad, text, color.White)
	return box
}

// baseDirection returns RTL when every bidi run of text is right-to-left.
// Mixed labels are shaped as one LTR run.
func baseDirection(text string) di.Direction {
	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return di.DirectionLTR
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return di.DirectionLTR
	}
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		if run.Direction() != bidi.RightToLeft {
			return di.DirectionLTR
		}
	}
	return di.DirectionRTL
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
