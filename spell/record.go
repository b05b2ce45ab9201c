package spell

import (
	"encoding/json"
	"image"

	"github.com/bodgit/spellconv/palette"
)

// Step is a single engine command, encoded as [name, parameters]. Nil
// parameters encode as null.
type Step struct {
	Name       string
	Parameters []interface{}
}

// MarshalJSON implements json.Marshaler
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{s.Name, s.Parameters})
}

func wait(n int) Step {
	return Step{Wait, []interface{}{n}}
}

// Pose is a named list of steps.
type Pose struct {
	Name  string
	Steps []Step
}

// Poses is encoded by the engine as a single flat array of alternating pose
// names and step lists, wrapped in an outer array.
type Poses []Pose

// MarshalJSON implements json.Marshaler
func (p Poses) MarshalJSON() ([]byte, error) {
	flat := make([]interface{}, 0, len(p)*2)
	for _, pose := range p {
		steps := pose.Steps
		if steps == nil {
			steps = []Step{}
		}
		flat = append(flat, pose.Name, steps)
	}
	return json.Marshal([]interface{}{flat})
}

// Frame slices one image out of a sheet, encoded as
// [id, [x, y, width, height], [offsetX, offsetY]].
type Frame struct {
	ID     string
	Rect   image.Rectangle
	Offset image.Point
}

// MarshalJSON implements json.Marshaler
func (f Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		f.ID,
		[4]int{f.Rect.Min.X, f.Rect.Min.Y, f.Rect.Dx(), f.Rect.Dy()},
		[2]int{f.Offset.X, f.Offset.Y},
	})
}

// PaletteRef names the palette resource a record is drawn with, encoded as
// [slot, resource].
type PaletteRef struct {
	Slot     string
	Resource string
}

// MarshalJSON implements json.Marshaler
func (p PaletteRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Slot, p.Resource})
}

// Record is an effect data record.
type Record struct {
	NID      string       `json:"nid"`
	Poses    Poses        `json:"poses"`
	Frames   []Frame      `json:"frames"`
	Palettes []PaletteRef `json:"palettes"`
}

// Record names, derived from the spell name.
func (s *Spell) ForegroundHitName() string  { return s.Name + "FGHit" }
func (s *Spell) ForegroundMissName() string { return s.Name + "FGMiss" }
func (s *Spell) BackgroundHitName() string  { return s.Name + "BGHit" }
func (s *Spell) BackgroundMissName() string { return s.Name + "BGMiss" }

// ImageResource returns the palette resource name for an image record.
func ImageResource(nid string) string {
	return nid + "_Image"
}

func commandSteps(commands []Command, fg, bg string) []Step {
	steps := []Step{
		{effectCommand, []interface{}{fg}},
		{underEffectCmd, []interface{}{bg}},
	}

	current := 0
	for _, c := range commands {
		if d := c.Frame - current; d != 0 {
			steps = append(steps, wait(d))
		}
		current = c.Frame
		steps = append(steps, Step{c.Name, c.Parameters})
	}

	return append(steps, Step{EndParentLoop, nil}, wait(1))
}

// EffectRecord returns the parent effect record, which drives the global
// commands and spawns the four image update children.
func (s *Spell) EffectRecord() Record {
	return Record{
		NID: s.Name,
		Poses: Poses{
			{attackPose, commandSteps(s.OnHit, s.ForegroundHitName(), s.BackgroundHitName())},
			{missPose, commandSteps(s.OnMiss, s.ForegroundMissName(), s.BackgroundMissName())},
		},
		Frames:   []Frame{},
		Palettes: []PaletteRef{},
	}
}

// Frames slices every registered image left to right out of a sheet of
// width by height frames.
func Frames(images *Registry, width, height int) []Frame {
	frames := make([]Frame, 0, images.Len())
	for n, name := range images.Names() {
		id, _ := images.ID(name)
		frames = append(frames, Frame{
			ID:   id,
			Rect: image.Rect(n*width, 0, n*width+width, height),
		})
	}
	return frames
}

// ImageRecord returns an image update record playing the updates.
func ImageRecord(nid string, updates []DisplayUpdate, images *Registry, width, height int) Record {
	steps := make([]Step, 0, len(updates)+2)
	steps = append(steps, Step{blendCommand, []interface{}{true}})
	for _, u := range updates {
		id, _ := images.ID(u.Image)
		steps = append(steps, Step{frameCommand, []interface{}{u.Duration, id}})
	}
	steps = append(steps, wait(1))

	return Record{
		NID: nid,
		Poses: Poses{
			{attackPose, steps},
		},
		Frames: Frames(images, width, height),
		Palettes: []PaletteRef{
			{imagePaletteIndex, ImageResource(nid)},
		},
	}
}

// ForegroundHitRecord returns the foreground record for the hit branch.
func (s *Spell) ForegroundHitRecord(width, height int) Record {
	return ImageRecord(s.ForegroundHitName(), s.Foreground.Timeline.Hit(), s.Foreground.Images, width, height)
}

// ForegroundMissRecord returns the foreground record for the miss branch.
func (s *Spell) ForegroundMissRecord(width, height int) Record {
	return ImageRecord(s.ForegroundMissName(), s.Foreground.Timeline.Miss(), s.Foreground.Images, width, height)
}

// BackgroundHitRecord returns the background record for the hit branch.
func (s *Spell) BackgroundHitRecord(width, height int) Record {
	return ImageRecord(s.BackgroundHitName(), s.Background.Timeline.Hit(), s.Background.Images, width, height)
}

// BackgroundMissRecord returns the background record for the miss branch.
func (s *Spell) BackgroundMissRecord(width, height int) Record {
	return ImageRecord(s.BackgroundMissName(), s.Background.Timeline.Miss(), s.Background.Images, width, height)
}

// PaletteRecords returns the palette records for every image record, in the
// order foreground hit, foreground miss, background hit, background miss.
// Both branches of a surface share the same palette.
func (s *Spell) PaletteRecords() []palette.Record {
	return []palette.Record{
		s.ForegroundPalette.Record(ImageResource(s.ForegroundHitName())),
		s.ForegroundPalette.Record(ImageResource(s.ForegroundMissName())),
		s.BackgroundPalette.Record(ImageResource(s.BackgroundHitName())),
		s.BackgroundPalette.Record(ImageResource(s.BackgroundMissName())),
	}
}
