package palette

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteCoordinates(t *testing.T) {
	p := New()
	for k := 0; k < 20; k++ {
		c, err := p.Add(color.RGBA{uint8(k), 0, 0, 0xff})
		require.NoError(t, err)
		assert.Equal(t, Coord{Column: k % 8, Row: k / 8}, c)
		assert.Equal(t, k, c.Index())
	}
	assert.Equal(t, 20, p.Len())
}

func TestPaletteDeduplicates(t *testing.T) {
	p := New()
	red := color.RGBA{0xff, 0, 0, 0xff}
	blue := color.RGBA{0, 0, 0xff, 0xff}

	first, err := p.Add(red)
	require.NoError(t, err)
	_, err = p.Add(blue)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := p.Add(red)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []color.RGBA{red, blue}, p.Colors())
}

func TestPaletteIgnoresAlpha(t *testing.T) {
	p := New()
	a, err := p.Add(color.NRGBA{10, 20, 30, 0xff})
	require.NoError(t, err)
	b, err := p.Add(color.NRGBA{10, 20, 30, 0x80})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, p.Len())

	c, ok := p.Lookup(color.RGBA{10, 20, 30, 0xff})
	assert.True(t, ok)
	assert.Equal(t, a, c)
}

func TestPaletteFull(t *testing.T) {
	p := New()
	for k := 0; k < 256; k++ {
		_, err := p.Add(color.RGBA{uint8(k), 1, 0, 0xff})
		require.NoError(t, err)
	}
	_, err := p.Add(color.RGBA{0, 2, 0, 0xff})
	assert.Equal(t, ErrFull, err)

	// Existing colors still resolve
	c, err := p.Add(color.RGBA{255, 1, 0, 0xff})
	assert.NoError(t, err)
	assert.Equal(t, Coord{Column: 7, Row: 31}, c)
}

func TestLookupMiss(t *testing.T) {
	p := New()
	_, ok := p.Lookup(color.Black)
	assert.False(t, ok)
}

func TestCoordColor(t *testing.T) {
	assert.Equal(t, color.RGBA{0, 3, 2, 0xff}, Coord{Column: 3, Row: 2}.Color())
}

func TestRecordJSON(t *testing.T) {
	p := New()
	_, err := p.Add(color.RGBA{248, 248, 248, 0xff})
	require.NoError(t, err)
	_, err = p.Add(color.RGBA{0, 8, 16, 0xff})
	require.NoError(t, err)

	b, err := json.Marshal(p.Record("FireFG_Image"))
	require.NoError(t, err)
	assert.JSONEq(t, `["FireFG_Image", [[[0,0],[248,248,248]], [[1,0],[0,8,16]]]]`, string(b))

	b, err = json.Marshal(New().Record("Empty"))
	require.NoError(t, err)
	assert.JSONEq(t, `["Empty", []]`, string(b))
}
