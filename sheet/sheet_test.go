package sheet

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/spellconv/palette"
	"github.com/bodgit/spellconv/spell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grey(v int) color.RGBA {
	return color.RGBA{uint8(v), uint8(v), uint8(v), 0xff}
}

func newImage(w, h int, f func(x, y int) color.RGBA) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetRGBA(x, y, f(x, y))
		}
	}
	return m
}

// swatched returns a 12x4 frame whose top-right 8x2 swatch holds colors 0-15
// and whose body uses body(x, y) which must pick from the same colors.
func swatched(body func(x, y int) int) *image.RGBA {
	return newImage(12, 4, func(x, y int) color.RGBA {
		if y < 2 && x >= 4 {
			return grey(16 * (y*8 + 11 - x))
		}
		return grey(16 * body(x, y))
	})
}

var swatchLayer = Layer{Width: 12, Height: 4, Swatch: true}

var testDialect = Dialect{
	Name:         "test",
	Foreground:   swatchLayer,
	Background:   Layer{Width: 3},
	StretchBelow: 3,
}

func TestScanAllOrder(t *testing.T) {
	colors := [][]int{
		{5, 1, 5},
		{2, 1, 3},
	}
	src := Images{"bg.png": newImage(3, 2, func(x, y int) color.RGBA {
		return grey(colors[y][x])
	})}

	p := palette.New()
	require.NoError(t, scanLayer(p, []string{"bg.png"}, Layer{Width: 3}, 2, src))

	// Column major: (0,0)=5 (0,1)=2 (1,0)=1 (1,1)=1 (2,0)=5 (2,1)=3
	assert.Equal(t, []color.RGBA{grey(5), grey(2), grey(1), grey(3)}, p.Colors())
}

func TestScanSwatchOrder(t *testing.T) {
	src := Images{"fg.png": swatched(func(x, y int) int { return 15 })}

	p := palette.New()
	require.NoError(t, scanLayer(p, []string{"fg.png"}, swatchLayer, 4, src))

	require.Equal(t, 16, p.Len())
	for k, c := range p.Colors() {
		assert.Equal(t, grey(16*k), c)
		coord, ok := p.Lookup(c)
		require.True(t, ok)
		assert.Equal(t, palette.Coord{Column: k % 8, Row: k / 8}, coord)
	}
}

func TestCalculatePalettes(t *testing.T) {
	s := spell.New("Fire")
	s.Foreground.Images.Add("a.png")
	s.Foreground.Images.Add("b.png")
	s.Background.Images.Add("x.png")
	s.Background.Images.Add("y.png")

	src := Images{
		"a.png": swatched(func(x, y int) int { return x % 3 }),
		"b.png": swatched(func(x, y int) int { return y }),
		"x.png": newImage(3, 2, func(x, y int) color.RGBA { return grey(200) }),
		"y.png": newImage(3, 2, func(x, y int) color.RGBA { return grey(x) }),
	}

	require.NoError(t, CalculatePalettes(s, testDialect, src))

	assert.Equal(t, 16, s.ForegroundPalette.Len())
	assert.Equal(t, []color.RGBA{grey(200), grey(0), grey(1), grey(2)}, s.BackgroundPalette.Colors())
	assert.Equal(t, 2, s.BackgroundHeight)
	assert.True(t, s.Stretch)
	assert.Equal(t, image.Pt(3, 4), testDialect.BackgroundSize(s))
	assert.Equal(t, image.Pt(12, 4), testDialect.ForegroundSize())
}

func TestCalculatePalettesNoStretch(t *testing.T) {
	s := spell.New("Fire")
	s.Background.Images.Add("x.png")

	src := Images{"x.png": newImage(3, 5, func(x, y int) color.RGBA { return grey(y) })}

	require.NoError(t, CalculatePalettes(s, testDialect, src))
	assert.Equal(t, 5, s.BackgroundHeight)
	assert.False(t, s.Stretch)
	assert.Equal(t, 5, s.BackgroundPalette.Len())
	assert.Equal(t, 0, s.ForegroundPalette.Len())
}

func TestCalculatePalettesMissingImage(t *testing.T) {
	s := spell.New("Fire")
	s.Foreground.Images.Add("missing.png")

	err := CalculatePalettes(s, testDialect, Images{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCalculatePalettesTooSmall(t *testing.T) {
	s := spell.New("Fire")
	s.Foreground.Images.Add("a.png")

	err := CalculatePalettes(s, testDialect, Images{"a.png": newImage(8, 4, func(x, y int) color.RGBA { return grey(0) })})
	assert.Error(t, err)
}

func TestSheet(t *testing.T) {
	s := spell.New("Fire")
	s.Foreground.Images.Add("a.png")
	s.Foreground.Images.Add("b.png")
	s.Foreground.Images.Add("c.png")

	bodies := map[string]func(x, y int) int{
		"a.png": func(x, y int) int { return x % 3 },
		"b.png": func(x, y int) int { return 9 + y },
		"c.png": func(x, y int) int { return (x + y) % 16 },
	}
	src := Images{}
	for name, body := range bodies {
		src[name] = swatched(body)
	}

	require.NoError(t, CalculatePalettes(s, testDialect, src))

	m, err := ForegroundSheet(s, testDialect, src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 36, 4), m.Bounds())

	for i, name := range s.Foreground.Images.Names() {
		frame := src[name].(*image.RGBA)
		for y := 0; y < 4; y++ {
			for x := 0; x < 12; x++ {
				want := palette.Coord{}.Color()
				if !swatchLayer.inSwatch(x, y) {
					coord, ok := s.ForegroundPalette.Lookup(frame.At(x, y))
					require.True(t, ok)
					want = coord.Color()
				}
				assert.Equal(t, want, m.RGBAAt(i*12+x, y), "%s at %d,%d", name, x, y)
			}
		}
	}

	// Color 9 is the second swatch row, first column
	assert.Equal(t, color.RGBA{0, 1, 1, 0xff}, m.RGBAAt(12, 0))
}

func TestSheetMirroredOffset(t *testing.T) {
	l := Layer{Width: 3, Height: 2, Offset: image.Pt(2, 1), Mirror: true}
	composite := newImage(6, 4, func(x, y int) color.RGBA { return grey(10*y + x) })
	src := Images{"a.png": composite}

	p := palette.New()
	require.NoError(t, scanLayer(p, []string{"a.png"}, l, 2, src))
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, grey(12), p.Colors()[0])

	m, err := Sheet([]string{"a.png"}, p, l, 2, false, src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), m.Bounds())

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			coord, ok := p.Lookup(composite.At(2+x, 1+y))
			require.True(t, ok)
			assert.Equal(t, coord.Color(), m.RGBAAt(2-x, y))
		}
	}
}

func TestSheetStretch(t *testing.T) {
	l := Layer{Width: 2}
	src := Images{
		"x.png": newImage(2, 2, func(x, y int) color.RGBA { return grey(x + 2*y) }),
		"y.png": newImage(2, 2, func(x, y int) color.RGBA { return grey(3 - x) }),
	}
	images := []string{"x.png", "y.png"}

	p := palette.New()
	require.NoError(t, scanLayer(p, images, l, 2, src))

	m, err := Sheet(images, p, l, 2, true, src)
	require.NoError(t, err)

	// Stretching doubles the height, never the width
	assert.Equal(t, image.Rect(0, 0, 4, 4), m.Bounds())

	for i, name := range images {
		for y := 0; y < 4; y++ {
			for x := 0; x < 2; x++ {
				coord, ok := p.Lookup(src[name].At(x, y/2))
				require.True(t, ok)
				assert.Equal(t, coord.Color(), m.RGBAAt(i*2+x, y))
			}
		}
	}
}

func TestSheetLookupMiss(t *testing.T) {
	src := Images{"a.png": newImage(2, 2, func(x, y int) color.RGBA { return grey(7) })}

	_, err := Sheet([]string{"a.png"}, palette.New(), Layer{Width: 2}, 2, false, src)
	require.Error(t, err)

	var le *LookupError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "a.png", le.Image)
	assert.Equal(t, image.Pt(0, 0), le.Point)
	assert.Equal(t, grey(7), le.Color)
}

func TestLookup(t *testing.T) {
	d, err := Lookup(DefaultDialect)
	require.NoError(t, err)
	assert.Equal(t, 480, d.Foreground.Width)
	assert.True(t, d.Foreground.Swatch)
	assert.False(t, d.Background.Swatch)

	d, err = Lookup("FEditor-Mirrored")
	require.NoError(t, err)
	assert.True(t, d.Foreground.Mirror)

	_, err = Lookup("nope")
	assert.Error(t, err)
}

func TestDirAndEncode(t *testing.T) {
	dir, err := ioutil.TempDir("", "sheet")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	m := newImage(3, 2, func(x, y int) color.RGBA { return grey(x * y) })

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.png"), b.Bytes(), 0644))

	got, err := Dir(dir).Open("a.png")
	require.NoError(t, err)
	assert.Equal(t, m.Bounds(), got.Bounds())
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, palette.RGB(m.At(x, y)), palette.RGB(got.At(x, y)))
		}
	}

	_, err = Dir(dir).Open("b.png")
	assert.True(t, os.IsNotExist(err))

	_, err = png.Decode(bytes.NewReader(b.Bytes()))
	assert.NoError(t, err)
}
