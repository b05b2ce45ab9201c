/*
Package preview renders the display timeline of a spell surface as an
animated GIF, for checking a conversion by eye.

Every frame is reduced to a 256 color palette. Frames already within that
limit keep their exact colors, anything else is quantized with a median cut.
*/
package preview

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/bodgit/spellconv/palette"
	"github.com/bodgit/spellconv/sheet"
	"github.com/bodgit/spellconv/spell"
	"github.com/ericpauley/go-quantize/quantize"
)

const (
	maxColors = 256
	// The engine runs at 60 frames per second, GIF delays are in 100ths
	engineRate = 60
	gifRate    = 100
)

var errNoFrames = errors.New("preview: nothing to draw")

// Delay converts a duration in engine frames into a GIF delay, rounded to
// the nearest 100th of a second but never less than one.
func Delay(frames int) int {
	d := (frames*gifRate + engineRate/2) / engineRate
	if d < 1 {
		d = 1
	}
	return d
}

func exactPalette(m image.Image) (color.Palette, bool) {
	p := palette.New()
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, err := p.Add(m.At(x, y)); err != nil {
				return nil, false
			}
		}
	}
	cp := make(color.Palette, 0, p.Len())
	for _, c := range p.Colors() {
		cp = append(cp, c)
	}
	return cp, true
}

// Paletted converts m to a paletted image of no more than 256 colors.
func Paletted(m image.Image) *image.Paletted {
	b := m.Bounds()

	cp, ok := exactPalette(m)
	if !ok {
		q := quantize.MedianCutQuantizer{}
		cp = q.Quantize(make(color.Palette, 0, maxColors), m)
	}

	pm := image.NewPaletted(b, cp)
	draw.Draw(pm, b, m, b.Min, draw.Src)

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	return pm
}

// Encode writes the frames as a looping animated GIF, each frame shown for
// the matching delay in 100ths of a second.
func Encode(w io.Writer, frames []image.Image, delays []int) error {
	if len(frames) == 0 {
		return errNoFrames
	}
	if len(frames) != len(delays) {
		return errors.New("preview: frame and delay count differ")
	}

	g := &gif.GIF{
		Image: make([]*image.Paletted, 0, len(frames)),
		Delay: append(delays[:0:0], delays...),
	}
	for _, m := range frames {
		g.Image = append(g.Image, Paletted(m))
	}

	return gif.EncodeAll(w, g)
}

// Timeline renders the display updates of one surface. Zero length updates
// are skipped.
func Timeline(w io.Writer, updates []spell.DisplayUpdate, l sheet.Layer, height int, stretch bool, src sheet.Source) error {
	cache := make(map[string]image.Image)

	var frames []image.Image
	var delays []int
	for _, u := range updates {
		if u.Duration == 0 {
			continue
		}
		m, ok := cache[u.Image]
		if !ok {
			var err error
			if m, err = sheet.Frame(src, u.Image, l, height, stretch); err != nil {
				return err
			}
			cache[u.Image] = m
		}
		frames = append(frames, m)
		delays = append(delays, Delay(u.Duration))
	}

	return Encode(w, frames, delays)
}
