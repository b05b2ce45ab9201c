/*
Package script interprets FEditor style spell animation scripts.

A script is a sequence of records, one per line:

	# comment
	C000040         a command; the last two hex digits are the opcode and
	                the two pairs before it are the secondary and primary
	                arguments
	O p- fg.png     an image record; the foreground image, then the
	  p- bg.png     background image on the next line and the number of
	  3             frames to show them for on the line after that
	~               the miss marker

Everything before the miss marker plays whether the spell hits or misses,
everything after it only plays on a hit.
*/
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bodgit/spellconv/sound"
	"github.com/bodgit/spellconv/spell"
)

// Filename is the name of the script within a spell directory.
const Filename = "Spell.txt"

// SyntaxError reports a malformed record.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("script: line %d: %s", e.Line, e.Msg)
}

type line struct {
	n    int
	text string
}

type cursor struct {
	lines []line
	pos   int
}

func newCursor(lines []string) *cursor {
	c := new(cursor)
	for i, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			c.lines = append(c.lines, line{i + 1, l})
		}
	}
	return c
}

func (c *cursor) next() (line, bool) {
	if c.pos >= len(c.lines) {
		return line{}, false
	}
	l := c.lines[c.pos]
	c.pos++
	return l, true
}

// surface tracks the image currently shown on one layer and since when.
type surface struct {
	layer   *spell.Layer
	current string
	since   int
	open    bool
}

func (s *surface) flush(frame int, missed bool) {
	u := spell.DisplayUpdate{
		Image:    s.current,
		Duration: frame - s.since,
	}
	if missed {
		s.layer.Timeline.PostMiss = append(s.layer.Timeline.PostMiss, u)
	} else {
		s.layer.Timeline.PreMiss = append(s.layer.Timeline.PreMiss, u)
	}
	s.since = frame
}

func (s *surface) show(image string, frame int, missed bool) {
	if s.open && s.current == image {
		return
	}
	if s.open {
		s.flush(frame, missed)
	}
	s.layer.Images.Add(image)
	s.current = image
	s.since = frame
	s.open = true
}

func (s *surface) close(frame int, missed bool) {
	if s.open {
		s.flush(frame, missed)
		s.open = false
	}
	if pm := s.layer.Timeline.PostMiss; len(pm) > 0 && pm[0].Duration == 0 {
		s.layer.Timeline.PostMiss = pm[1:]
	}
}

type parser struct {
	spell  *spell.Spell
	sounds sound.Table

	frame   int
	missed  bool
	panned  bool
	dimness float64
	// Name of the last brightness command emitted, if any
	direction string

	foreground surface
	background surface
}

func newParser(name string, sounds sound.Table) *parser {
	if sounds == nil {
		sounds = sound.Map{}
	}
	s := spell.New(name)
	return &parser{
		spell:      s,
		sounds:     sounds,
		foreground: surface{layer: &s.Foreground},
		background: surface{layer: &s.Background},
	}
}

func (p *parser) command(name string, parameters ...interface{}) {
	c := spell.Command{
		Frame:      p.frame,
		Name:       name,
		Parameters: parameters,
	}
	p.spell.OnHit = append(p.spell.OnHit, c)
	if !p.missed {
		p.spell.OnMiss = append(p.spell.OnMiss, c)
	}
}

func (p *parser) attack(_, _ int) error {
	p.spell.OnHit = append(p.spell.OnHit, spell.Command{Frame: p.frame, Name: spell.SpellHit})
	if !p.missed {
		p.spell.OnMiss = append(p.spell.OnMiss, spell.Command{Frame: p.frame, Name: spell.Miss})
	}
	return nil
}

func (p *parser) brightness(primary, _ int) error {
	dimness := float64(primary) / 0x10
	switch {
	case dimness > p.dimness && p.direction != spell.Darken:
		p.command(spell.Darken)
		p.direction = spell.Darken
	case dimness < p.dimness && p.direction != spell.Lighten:
		p.command(spell.Lighten)
		p.direction = spell.Lighten
	}
	p.dimness = dimness
	return nil
}

func (p *parser) pan(_, _ int) error {
	p.command(spell.Pan)
	p.panned = true
	return nil
}

func (p *parser) sound(primary, secondary int) error {
	name, err := p.sounds.Name(primary<<8 | secondary)
	if err != nil {
		return err
	}
	p.command(spell.Sound, name)
	return nil
}

func (p *parser) stretch(_, _ int) error {
	p.spell.Stretch = true
	return nil
}

func hexByte(s string) (int, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	return int(v), err
}

// decode splits a command token into its opcode and arguments.
func decode(token string) (op opcode, primary, secondary int, err error) {
	digits := token[1:]
	if digits == "" {
		return 0, 0, 0, fmt.Errorf("empty command %q", token)
	}
	for _, r := range digits {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return 0, 0, 0, fmt.Errorf("bad command %q", token)
		}
	}

	n := len(digits)
	pair := func(end int) (int, error) {
		start := end - 2
		if start < 0 {
			start = 0
		}
		return hexByte(digits[start:end])
	}

	v, err := pair(n)
	if err != nil {
		return 0, 0, 0, err
	}
	op = opcode(v)

	if n > 2 {
		if secondary, err = pair(n - 2); err != nil {
			return 0, 0, 0, err
		}
	}
	if n > 4 {
		if primary, err = pair(n - 4); err != nil {
			return 0, 0, 0, err
		}
	}

	return op, primary, secondary, nil
}

func lastField(s string) string {
	f := strings.Fields(s)
	return f[len(f)-1]
}

// isRecord reports whether the line starts a record of its own.
func isRecord(text string) bool {
	return strings.ContainsRune("#CO~", rune(text[0]))
}

func (p *parser) images(c *cursor, l line) error {
	fg := lastField(l.text)

	bl, ok := c.next()
	if !ok || isRecord(bl.text) {
		return &SyntaxError{l.n, "image record is missing the background image"}
	}
	bg := lastField(bl.text)

	dl, ok := c.next()
	if !ok || isRecord(dl.text) {
		return &SyntaxError{bl.n, "image record is missing the duration"}
	}
	duration, err := strconv.Atoi(dl.text)
	if err != nil || duration < 0 {
		return &SyntaxError{dl.n, fmt.Sprintf("bad duration %q", dl.text)}
	}

	p.foreground.show(fg, p.frame, p.missed)
	p.background.show(bg, p.frame, p.missed)
	p.frame += duration

	return nil
}

func (p *parser) miss() {
	if p.missed {
		return
	}
	if p.panned {
		p.spell.OnMiss = append(p.spell.OnMiss, spell.Command{Frame: p.frame, Name: spell.Pan})
	}
	for _, s := range []*surface{&p.foreground, &p.background} {
		if s.open {
			s.flush(p.frame, false)
		}
	}
	p.spell.MissFrame = p.frame
	p.missed = true
}

func (p *parser) finish() {
	p.foreground.close(p.frame, p.missed)
	p.background.close(p.frame, p.missed)

	if p.panned {
		p.spell.OnHit = append(p.spell.OnHit, spell.Command{Frame: p.frame, Name: spell.Pan})
	}

	p.spell.Frames = p.frame
	if !p.missed {
		p.spell.MissFrame = p.frame
	}
}

func (p *parser) parse(lines []string) (*spell.Spell, error) {
	c := newCursor(lines)
	for l, ok := c.next(); ok; l, ok = c.next() {
		switch l.text[0] {
		case '#':
		case 'C':
			op, primary, secondary, err := decode(strings.Fields(l.text)[0])
			if err != nil {
				return nil, &SyntaxError{l.n, err.Error()}
			}
			if err := lookup(op)(p, primary, secondary); err != nil {
				return nil, fmt.Errorf("script: line %d: %w", l.n, err)
			}
		case 'O':
			if err := p.images(c, l); err != nil {
				return nil, err
			}
		case '~':
			p.miss()
		}
	}

	p.finish()

	return p.spell, nil
}

// ParseLines interprets the script lines and returns the spell they
// describe. Every call starts from fresh state.
func ParseLines(lines []string, name string, sounds sound.Table) (*spell.Spell, error) {
	return newParser(name, sounds).parse(lines)
}

// Parse reads a script from r.
func Parse(r io.Reader, name string, sounds sound.Table) (*spell.Spell, error) {
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return ParseLines(lines, name, sounds)
}

// ParseFile reads a script from file.
func ParseFile(file, name string, sounds sound.Table) (*spell.Spell, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, name, sounds)
}
