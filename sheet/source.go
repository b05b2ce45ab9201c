package sheet

import (
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/gift"
)

// Source opens frame images by name.
type Source interface {
	Open(name string) (image.Image, error)
}

// Dir is a Source reading image files from a directory.
type Dir string

// Open implements Source
func (d Dir) Open(name string) (image.Image, error) {
	f, err := os.Open(filepath.Join(string(d), name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

// Images is an in-memory Source.
type Images map[string]image.Image

// Open implements Source
func (i Images) Open(name string) (image.Image, error) {
	if m, ok := i[name]; ok {
		return m, nil
	}
	return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
}

// extract crops the layer's frame region out of the source image. The result
// always has its origin at (0, 0).
func extract(src Source, name string, l Layer, height int) (image.Image, error) {
	m, err := src.Open(name)
	if err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}

	b := m.Bounds()
	r := l.region(height).Add(b.Min)
	if !r.In(b) {
		return nil, fmt.Errorf("sheet: %s is %dx%d, frame needs %v", name, b.Dx(), b.Dy(), l.region(height))
	}

	g := gift.New(gift.Crop(r))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, m)

	return dst, nil
}

// frameHeight resolves the layer height, falling back to the height of the
// named image.
func frameHeight(src Source, name string, l Layer) (int, error) {
	if l.Height > 0 {
		return l.Height, nil
	}
	m, err := src.Open(name)
	if err != nil {
		return 0, fmt.Errorf("sheet: %w", err)
	}
	return m.Bounds().Dy() - l.Offset.Y, nil
}
