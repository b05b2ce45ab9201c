package sheet

import (
	"fmt"
	"image"
	"strings"
)

const (
	swatchWidth  = 8
	swatchHeight = 2
)

// Layer describes where one surface's frame is found within each source
// image and how it is laid out on the sheet.
type Layer struct {
	// Width and Height of a single frame. A zero Height means the height
	// of the first image, less the offset.
	Width  int
	Height int
	// Offset of the frame within the source image
	Offset image.Point
	// Mirror flips each frame horizontally on the sheet
	Mirror bool
	// Swatch indicates the frame carries its palette in the top-right
	// 8x2 pixels. Only the swatch is scanned for colors and it is left out
	// of the sheet.
	Swatch bool
}

func (l Layer) inSwatch(x, y int) bool {
	return l.Swatch && y < swatchHeight && x >= l.Width-swatchWidth
}

func (l Layer) region(height int) image.Rectangle {
	return image.Rect(0, 0, l.Width, height).Add(l.Offset)
}

// Dialect is a profile of the geometric conventions of one source game's
// frame images.
type Dialect struct {
	Name        string
	Description string
	Foreground  Layer
	Background  Layer
	// Backgrounds shorter than this are stretched to twice their height
	StretchBelow int
}

// DefaultDialect is the name of the dialect used unless another is chosen.
const DefaultDialect = "feditor"

// Dialects lists the built-in profiles.
var Dialects = []Dialect{
	{
		Name:        "feditor",
		Description: "FEditor exports; 480x160 foreground with palette swatch, 240 pixel wide background",
		Foreground: Layer{
			Width:  480,
			Height: 160,
			Swatch: true,
		},
		Background: Layer{
			Width: 240,
		},
		StretchBelow: 96,
	},
	{
		Name:        "feditor-composite",
		Description: "240x160 foreground in the right half of a 480 pixel wide composite, with palette swatch",
		Foreground: Layer{
			Width:  240,
			Height: 160,
			Offset: image.Pt(240, 0),
			Swatch: true,
		},
		Background: Layer{
			Width: 240,
		},
		StretchBelow: 96,
	},
	{
		Name:        "feditor-mirrored",
		Description: "FEditor exports played from the opposite side of the screen",
		Foreground: Layer{
			Width:  480,
			Height: 160,
			Mirror: true,
			Swatch: true,
		},
		Background: Layer{
			Width:  240,
			Mirror: true,
		},
		StretchBelow: 96,
	},
}

// Lookup returns the built-in dialect with the given name.
func Lookup(name string) (Dialect, error) {
	for _, d := range Dialects {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("sheet: unknown dialect %q", name)
}
