/*
Package sheet builds the palettes and palettized sprite sheets for a spell.

Palettes are built by scanning every registered frame of a surface in
registry order. The sheet then lays those frames out left to right and
replaces every pixel with its palette coordinate, stored in the green and
blue channels of an otherwise black pixel.
*/
package sheet

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/bodgit/spellconv/palette"
	"github.com/bodgit/spellconv/spell"
	"github.com/disintegration/gift"
)

var errNoHeight = errors.New("sheet: frame height must be positive")

// LookupError is returned when a sheet pixel has a color that the palette
// pass never saw. This only happens when the regions scanned by the two
// passes disagree.
type LookupError struct {
	Image string
	Point image.Point
	Color color.RGBA
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("sheet: %s: color #%02x%02x%02x at %v is not in the palette", e.Image, e.Color.R, e.Color.G, e.Color.B, e.Point)
}

func scanSwatch(p *palette.Palette, m image.Image, l Layer) error {
	for y := 0; y < swatchHeight; y++ {
		for x := l.Width - 1; x >= l.Width-swatchWidth; x-- {
			if _, err := p.Add(m.At(x, y)); err != nil {
				return err
			}
		}
	}
	return nil
}

func scanAll(p *palette.Palette, m image.Image, l Layer, height int) error {
	for x := 0; x < l.Width; x++ {
		for y := 0; y < height; y++ {
			if _, err := p.Add(m.At(x, y)); err != nil {
				return err
			}
		}
	}
	return nil
}

func scanLayer(p *palette.Palette, images []string, l Layer, height int, src Source) error {
	for _, name := range images {
		m, err := extract(src, name, l, height)
		if err != nil {
			return err
		}
		if l.Swatch {
			err = scanSwatch(p, m, l)
		} else {
			err = scanAll(p, m, l, height)
		}
		if err != nil {
			return fmt.Errorf("sheet: %s: %w", name, err)
		}
	}
	return nil
}

// CalculatePalettes fills in the spell's foreground and background palettes
// and the background geometry. Foreground images are scanned before
// background images, each in registry order.
func CalculatePalettes(s *spell.Spell, d Dialect, src Source) error {
	fg := s.Foreground.Images.Names()
	if len(fg) > 0 {
		if d.Foreground.Height <= 0 {
			return errNoHeight
		}
		if err := scanLayer(s.ForegroundPalette, fg, d.Foreground, d.Foreground.Height, src); err != nil {
			return err
		}
	}

	bg := s.Background.Images.Names()
	if len(bg) > 0 {
		height, err := frameHeight(src, bg[0], d.Background)
		if err != nil {
			return err
		}
		if height <= 0 {
			return errNoHeight
		}
		s.BackgroundHeight = height
		if height < d.StretchBelow {
			s.Stretch = true
		}
		if err := scanLayer(s.BackgroundPalette, bg, d.Background, height, src); err != nil {
			return err
		}
	}

	return nil
}

// encodeFrame replaces every pixel of the frame with its palette coordinate.
// Swatch pixels are left out and take the coordinate of the first color.
func encodeFrame(name string, m image.Image, p *palette.Palette, l Layer, height int) (*image.RGBA, error) {
	frame := image.NewRGBA(image.Rect(0, 0, l.Width, height))
	blank := palette.Coord{}.Color()
	for y := 0; y < height; y++ {
		for x := 0; x < l.Width; x++ {
			if l.inSwatch(x, y) {
				frame.SetRGBA(x, y, blank)
				continue
			}
			c := m.At(x, y)
			coord, ok := p.Lookup(c)
			if !ok {
				return nil, &LookupError{
					Image: name,
					Point: image.Pt(x, y).Add(l.Offset),
					Color: palette.RGB(c),
				}
			}
			frame.SetRGBA(x, y, coord.Color())
		}
	}
	return frame, nil
}

func transform(l Layer, height int, stretch bool) *gift.GIFT {
	g := gift.New()
	if l.Mirror {
		g.Add(gift.FlipHorizontal())
	}
	if stretch {
		g.Add(gift.Resize(l.Width, height*2, gift.NearestNeighborResampling))
	}
	return g
}

// Frame returns the layer's region of the named image as it appears on
// screen, mirrored and stretched as required.
func Frame(src Source, name string, l Layer, height int, stretch bool) (image.Image, error) {
	if height <= 0 {
		return nil, errNoHeight
	}

	m, err := extract(src, name, l, height)
	if err != nil {
		return nil, err
	}

	g := transform(l, height, stretch)
	if len(g.Filters) == 0 {
		return m, nil
	}

	dst := image.NewNRGBA(g.Bounds(m.Bounds()))
	g.Draw(dst, m)

	return dst, nil
}

// Sheet lays out the palettized frames of the named images left to right.
// The sheet is as wide as all of the frames together and as tall as one
// frame, or twice that when stretching.
func Sheet(images []string, p *palette.Palette, l Layer, height int, stretch bool, src Source) (*image.RGBA, error) {
	if height <= 0 {
		return nil, errNoHeight
	}

	g := transform(l, height, stretch)
	out := height
	if stretch {
		out *= 2
	}

	sheet := image.NewRGBA(image.Rect(0, 0, l.Width*len(images), out))
	for i, name := range images {
		m, err := extract(src, name, l, height)
		if err != nil {
			return nil, err
		}

		frame, err := encodeFrame(name, m, p, l, height)
		if err != nil {
			return nil, err
		}

		if len(g.Filters) > 0 {
			dst := image.NewRGBA(g.Bounds(frame.Bounds()))
			g.Draw(dst, frame)
			frame = dst
		}

		draw.Draw(sheet, frame.Bounds().Add(image.Pt(i*l.Width, 0)), frame, image.Point{}, draw.Src)
	}

	return sheet, nil
}

// ForegroundSize returns the size of one foreground frame on the sheet.
func (d Dialect) ForegroundSize() image.Point {
	return image.Pt(d.Foreground.Width, d.Foreground.Height)
}

// BackgroundSize returns the size of one background frame on the sheet,
// taking stretching into account. Only valid after CalculatePalettes.
func (d Dialect) BackgroundSize(s *spell.Spell) image.Point {
	h := s.BackgroundHeight
	if s.Stretch {
		h *= 2
	}
	return image.Pt(d.Background.Width, h)
}

// ForegroundSheet returns the palettized foreground sheet. The foreground is
// never stretched.
func ForegroundSheet(s *spell.Spell, d Dialect, src Source) (*image.RGBA, error) {
	return Sheet(s.Foreground.Images.Names(), s.ForegroundPalette, d.Foreground, d.Foreground.Height, false, src)
}

// BackgroundSheet returns the palettized background sheet.
func BackgroundSheet(s *spell.Spell, d Dialect, src Source) (*image.RGBA, error) {
	return Sheet(s.Background.Images.Names(), s.BackgroundPalette, d.Background, s.BackgroundHeight, s.Stretch, src)
}

// Encode writes the sheet to w as a PNG.
func Encode(w io.Writer, m image.Image) error {
	e := png.Encoder{
		CompressionLevel: png.BestCompression,
	}
	return e.Encode(w, m)
}
