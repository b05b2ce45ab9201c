/*
Package spell holds the aggregate produced by converting one animated spell
effect: the hit and miss command timelines, the foreground and background
display timelines and the registries of distinct frame images, plus the
palettes filled in by a later pass over the image data.
*/
package spell

import (
	"fmt"

	"github.com/bodgit/spellconv/palette"
)

// Command names understood by the consuming engine.
const (
	Pan           = "pan"
	Sound         = "sound"
	Lighten       = "lighten"
	Darken        = "darken"
	SpellHit      = "spell_hit"
	Miss          = "miss"
	EndParentLoop = "end_parent_loop"
	Wait          = "wait"

	frameCommand      = "frame"
	blendCommand      = "blend"
	effectCommand     = "enemy_effect"
	underEffectCmd    = "enemy_under_effect"
	attackPose        = "Attack"
	missPose          = "Miss"
	imagePaletteIndex = "Image"
)

// Command is a global effect directive fired at an absolute frame.
type Command struct {
	Frame      int
	Name       string
	Parameters []interface{}
}

// DisplayUpdate records that an image was shown for Duration frames.
type DisplayUpdate struct {
	Image    string
	Duration int
}

// Timeline is the display history of one surface, split at the miss marker.
type Timeline struct {
	PreMiss  []DisplayUpdate
	PostMiss []DisplayUpdate
}

// Hit returns the updates played when the spell connects.
func (t Timeline) Hit() []DisplayUpdate {
	updates := make([]DisplayUpdate, 0, len(t.PreMiss)+len(t.PostMiss))
	updates = append(updates, t.PreMiss...)
	return append(updates, t.PostMiss...)
}

// Miss returns the updates played when the spell misses.
func (t Timeline) Miss() []DisplayUpdate {
	return append(t.PreMiss[:0:0], t.PreMiss...)
}

// Duration sums the durations of the updates.
func Duration(updates []DisplayUpdate) int {
	n := 0
	for _, u := range updates {
		n += u.Duration
	}
	return n
}

// Registry maps image file names to synthetic identifiers, assigned in the
// order the images are first seen.
type Registry struct {
	prefix string
	ids    map[string]string
	names  []string
}

// NewRegistry returns an empty registry whose identifiers are the prefix
// followed by the image index.
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		ids:    make(map[string]string),
	}
}

// Add registers the image if it's new and returns its identifier.
func (r *Registry) Add(name string) string {
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := fmt.Sprintf("%s%d", r.prefix, len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// ID returns the identifier of a registered image.
func (r *Registry) ID(name string) (string, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Names returns the registered images in first-seen order.
func (r *Registry) Names() []string {
	return append(r.names[:0:0], r.names...)
}

// Len returns the number of registered images.
func (r *Registry) Len() int {
	return len(r.names)
}

// Layer is one of the two independently timed surfaces.
type Layer struct {
	Images   *Registry
	Timeline Timeline
}

// Spell is the conversion unit for one effect.
type Spell struct {
	Name string

	OnHit  []Command
	OnMiss []Command

	Foreground Layer
	Background Layer

	// Frames is the total frame count of the hit branch and MissFrame the
	// frame at which the miss branch ends.
	Frames    int
	MissFrame int

	Stretch bool

	ForegroundPalette *palette.Palette
	BackgroundPalette *palette.Palette
	BackgroundHeight  int
}

// New returns an empty spell.
func New(name string) *Spell {
	return &Spell{
		Name: name,
		Foreground: Layer{
			Images: NewRegistry(name + "FG"),
		},
		Background: Layer{
			Images: NewRegistry(name + "BG"),
		},
		ForegroundPalette: palette.New(),
		BackgroundPalette: palette.New(),
	}
}
