/*
Package spellconv is a library for converting FEditor style spell animations
into the JSON effect records and palettized sprite sheets used by Lex
Talionis style engines.

A spell directory holds a Spell.txt script and the frame images it names.
Conversion happens in three passes; the script is interpreted, palettes are
built from the frame images and finally the records and sheets are
generated. Nothing is written until all three passes succeed.
*/
package spellconv

import (
	"bytes"
	"encoding/json"
	"image"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/spellconv/preview"
	"github.com/bodgit/spellconv/script"
	"github.com/bodgit/spellconv/sheet"
	"github.com/bodgit/spellconv/sound"
	"github.com/bodgit/spellconv/spell"
)

// Converter converts spell directories.
type Converter struct {
	sounds  sound.Table
	dialect sheet.Dialect
	logger  *log.Logger

	// Preview additionally writes an animated GIF of each surface
	Preview bool
}

// New returns a Converter resolving sound IDs with sounds and reading frame
// images according to dialect.
func New(sounds sound.Table, dialect sheet.Dialect, logger *log.Logger) *Converter {
	return &Converter{
		sounds:  sounds,
		dialect: dialect,
		logger:  logger,
	}
}

type file struct {
	name string
	data []byte
}

type record struct {
	name  string
	value interface{}
}

func jsonFile(name string, v interface{}) (file, error) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return file{}, err
	}
	return file{name + ".json", b}, nil
}

func pngFile(name string, m image.Image) (file, error) {
	b := new(bytes.Buffer)
	if err := sheet.Encode(b, m); err != nil {
		return file{}, err
	}
	return file{name + ".png", b.Bytes()}, nil
}

func (c *Converter) records(s *spell.Spell) ([]file, error) {
	fg := c.dialect.ForegroundSize()
	bg := c.dialect.BackgroundSize(s)

	records := []record{
		{s.Name + "_effect", s.EffectRecord()},
		{s.ForegroundHitName() + "_effect", s.ForegroundHitRecord(fg.X, fg.Y)},
		{s.ForegroundMissName() + "_effect", s.ForegroundMissRecord(fg.X, fg.Y)},
		{s.BackgroundHitName() + "_effect", s.BackgroundHitRecord(bg.X, bg.Y)},
		{s.BackgroundMissName() + "_effect", s.BackgroundMissRecord(bg.X, bg.Y)},
	}
	for _, r := range s.PaletteRecords() {
		records = append(records, record{r.Name + "_palette", r})
	}

	files := make([]file, 0, len(records))
	for _, r := range records {
		f, err := jsonFile(r.name, r.value)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, nil
}

func (c *Converter) sheets(s *spell.Spell, src sheet.Source) ([]file, error) {
	var files []file

	if s.Foreground.Images.Len() > 0 {
		m, err := sheet.ForegroundSheet(s, c.dialect, src)
		if err != nil {
			return nil, err
		}
		f, err := pngFile(s.Name+"FG", m)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	} else {
		c.logger.Printf("No foreground images in \"%s\"\n", s.Name)
	}

	if s.Background.Images.Len() > 0 {
		m, err := sheet.BackgroundSheet(s, c.dialect, src)
		if err != nil {
			return nil, err
		}
		f, err := pngFile(s.Name+"BG", m)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	} else {
		c.logger.Printf("No background images in \"%s\"\n", s.Name)
	}

	return files, nil
}

func (c *Converter) previews(s *spell.Spell, src sheet.Source) ([]file, error) {
	var files []file

	layers := []struct {
		suffix  string
		layer   spell.Layer
		dialect sheet.Layer
		height  int
		stretch bool
	}{
		{"FG", s.Foreground, c.dialect.Foreground, c.dialect.Foreground.Height, false},
		{"BG", s.Background, c.dialect.Background, s.BackgroundHeight, s.Stretch},
	}

	for _, l := range layers {
		updates := l.layer.Timeline.Hit()
		if spell.Duration(updates) == 0 {
			continue
		}
		b := new(bytes.Buffer)
		if err := preview.Timeline(b, updates, l.dialect, l.height, l.stretch, src); err != nil {
			return nil, err
		}
		files = append(files, file{s.Name + l.suffix + "_preview.gif", b.Bytes()})
	}

	return files, nil
}

// Render runs all of the conversion passes over the spell directory and
// returns the generated files keyed by name, without writing anything.
func (c *Converter) Render(name, dir string) (map[string][]byte, error) {
	files, err := c.render(name, dir)
	if err != nil {
		return nil, err
	}
	m := make(map[string][]byte, len(files))
	for _, f := range files {
		m[f.name] = f.data
	}
	return m, nil
}

func (c *Converter) render(name, dir string) ([]file, error) {
	s, err := script.ParseFile(filepath.Join(dir, script.Filename), name, c.sounds)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("Parsed \"%s\": %d frames, %d foreground and %d background images\n", name, s.Frames, s.Foreground.Images.Len(), s.Background.Images.Len())

	src := sheet.Dir(dir)

	if err := sheet.CalculatePalettes(s, c.dialect, src); err != nil {
		return nil, err
	}
	c.logger.Printf("Palettes for \"%s\": %d foreground and %d background colors\n", name, s.ForegroundPalette.Len(), s.BackgroundPalette.Len())
	if s.Stretch {
		c.logger.Printf("Stretching background of \"%s\"\n", name)
	}

	files, err := c.records(s)
	if err != nil {
		return nil, err
	}

	sheets, err := c.sheets(s, src)
	if err != nil {
		return nil, err
	}
	files = append(files, sheets...)

	if c.Preview {
		previews, err := c.previews(s, src)
		if err != nil {
			return nil, err
		}
		files = append(files, previews...)
	}

	return files, nil
}

// Convert converts the spell in dir, naming it name, and writes the results
// to out which is created if necessary.
func (c *Converter) Convert(name, dir, out string) error {
	files, err := c.render(name, dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}

	for _, f := range files {
		if err := ioutil.WriteFile(filepath.Join(out, f.name), f.data, 0644); err != nil {
			return err
		}
	}
	c.logger.Printf("Wrote %d files for \"%s\" to \"%s\"\n", len(files), name, out)

	return nil
}
