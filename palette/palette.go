/*
Package palette implements the deduplicated color table shared by every frame
of one spell layer.

Colors are assigned an index in the order they are first seen and that index
is addressed as a coordinate on an 8 column grid, so the k-th color lives at
column k%8, row k/8. At most 256 colors fit, which is 32 rows.
*/
package palette

import (
	"encoding/json"
	"errors"
	"image/color"
)

const (
	// Columns is the width of the palette grid
	Columns = 8
	// Rows is the maximum height of the palette grid
	Rows = 32

	maxEntries = Columns * Rows
)

// ErrFull is returned when a new color is added to a palette that already
// holds the maximum number of entries.
var ErrFull = errors.New("palette: more than 256 colors")

// Coord is the position of a color on the palette grid.
type Coord struct {
	Column int
	Row    int
}

func coordOf(index int) Coord {
	return Coord{
		Column: index % Columns,
		Row:    index / Columns,
	}
}

// Index returns the linear discovery index of the coordinate.
func (c Coord) Index() int {
	return c.Row*Columns + c.Column
}

// Color returns the sheet pixel encoding the coordinate. The red channel is
// reserved and always zero.
func (c Coord) Color() color.RGBA {
	return color.RGBA{0, uint8(c.Column), uint8(c.Row), 0xff}
}

// MarshalJSON encodes the coordinate as a [column, row] pair.
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Column, c.Row})
}

// Palette is an insertion ordered mapping of RGB colors to coordinates.
type Palette struct {
	coords map[color.RGBA]Coord
	colors []color.RGBA
}

// New returns an empty palette
func New() *Palette {
	return &Palette{
		coords: make(map[color.RGBA]Coord),
	}
}

// RGB reduces any color to its opaque, non-premultiplied RGB triple. Alpha
// plays no part in palette matching.
func RGB(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{n.R, n.G, n.B, 0xff}
}

// Len returns the number of colors in the palette
func (p *Palette) Len() int {
	return len(p.colors)
}

// Add registers the color if it hasn't been seen before and returns its
// coordinate.
func (p *Palette) Add(c color.Color) (Coord, error) {
	rgb := RGB(c)
	if coord, ok := p.coords[rgb]; ok {
		return coord, nil
	}
	if len(p.colors) >= maxEntries {
		return Coord{}, ErrFull
	}
	coord := coordOf(len(p.colors))
	p.colors = append(p.colors, rgb)
	p.coords[rgb] = coord
	return coord, nil
}

// Lookup returns the coordinate of a previously added color.
func (p *Palette) Lookup(c color.Color) (Coord, bool) {
	coord, ok := p.coords[RGB(c)]
	return coord, ok
}

// Colors returns the colors in the order they were first added.
func (p *Palette) Colors() []color.RGBA {
	return append(p.colors[:0:0], p.colors...)
}

// Entry pairs a palette coordinate with its color in the data record.
type Entry struct {
	Coord Coord
	Color color.RGBA
}

// MarshalJSON encodes the entry as [[column, row], [r, g, b]].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		e.Coord,
		[3]int{int(e.Color.R), int(e.Color.G), int(e.Color.B)},
	})
}

// Entries returns every entry in palette order.
func (p *Palette) Entries() []Entry {
	entries := make([]Entry, 0, len(p.colors))
	for _, c := range p.colors {
		entries = append(entries, Entry{
			Coord: p.coords[c],
			Color: c,
		})
	}
	return entries
}

// Record is the palette data record consumed by the engine; a named list of
// entries encoded as [name, [entries...]].
type Record struct {
	Name    string
	Entries []Entry
}

// MarshalJSON encodes the record as a two element array.
func (r Record) MarshalJSON() ([]byte, error) {
	entries := r.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal([]interface{}{r.Name, entries})
}

// Record returns the data record for the palette under the given resource
// name.
func (p *Palette) Record(name string) Record {
	return Record{
		Name:    name,
		Entries: p.Entries(),
	}
}
