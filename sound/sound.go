/*
Package sound resolves the numeric sound IDs used by spell scripts into the
sound names known to the consuming engine.

IDs follow the numbering of the music and sound effect lists shipped with the
Nightmare module packages. A list is a text file with one "<id> <name>" pair
per line where the ID is decimal or 0x prefixed hexadecimal.
*/
package sound

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrUnknown is returned when an ID has no entry in the table.
var ErrUnknown = errors.New("sound: unknown id")

// Table maps a sound ID to its name.
type Table interface {
	Name(id int) (string, error)
}

// Map is an in-memory Table.
type Map map[int]string

// Name implements Table
func (m Map) Name(id int) (string, error) {
	if name, ok := m[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %#x", ErrUnknown, id)
}

// Entry is one line of a sound list.
type Entry struct {
	ID   int
	Name string
}

func parseLine(line string) (Entry, error) {
	i := strings.IndexAny(line, " \t-:=")
	if i < 0 {
		return Entry{}, errors.New("sound: missing name")
	}

	id, err := strconv.ParseInt(line[:i], 0, 32)
	if err != nil {
		return Entry{}, fmt.Errorf("sound: bad id %q", line[:i])
	}

	name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line[i:]), "-:="))
	if name == "" {
		return Entry{}, errors.New("sound: missing name")
	}

	return Entry{int(id), name}, nil
}

// ParseList reads a sound list. Blank lines and lines starting with # are
// skipped.
func ParseList(r io.Reader) ([]Entry, error) {
	var entries []Entry

	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		entries = append(entries, e)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// NewMap builds a Map from list entries. Later entries replace earlier ones
// with the same ID.
func NewMap(entries []Entry) Map {
	m := make(Map, len(entries))
	for _, e := range entries {
		m[e.ID] = e.Name
	}
	return m
}
