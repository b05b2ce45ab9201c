package sound

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const list = `# Sound effects
0x0000 Silence
0x03B1 Fire
  946 - Thunder

1025: Elfire
`

func TestParseList(t *testing.T) {
	entries, err := ParseList(strings.NewReader(list))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{0x0000, "Silence"},
		{0x03b1, "Fire"},
		{946, "Thunder"},
		{1025, "Elfire"},
	}, entries)
}

func TestParseListErrors(t *testing.T) {
	tables := []struct {
		name string
		in   string
	}{
		{"bad id", "0xZZ Fire\n"},
		{"missing name", "12\n"},
		{"only separator", "12 -\n"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := ParseList(strings.NewReader(table.in))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestMap(t *testing.T) {
	entries, err := ParseList(strings.NewReader(list))
	require.NoError(t, err)
	m := NewMap(entries)

	name, err := m.Name(0x3b1)
	assert.NoError(t, err)
	assert.Equal(t, "Fire", name)

	name, err = m.Name(946)
	assert.NoError(t, err)
	assert.Equal(t, "Thunder", name)

	_, err = m.Name(0x3b3)
	assert.True(t, errors.Is(err, ErrUnknown))
}

func TestMapLaterEntryWins(t *testing.T) {
	entries, err := ParseList(strings.NewReader("0x03B1 Fire\n945 Elfire\n"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	m := NewMap(entries)
	assert.Len(t, m, 1)

	name, err := m.Name(0x3b1)
	assert.NoError(t, err)
	assert.Equal(t, "Elfire", name)
}

func TestDB(t *testing.T) {
	dir, err := ioutil.TempDir("", "sound")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "list.txt")
	require.NoError(t, ioutil.WriteFile(file, []byte(list), 0644))

	db, err := NewDB(filepath.Join(dir, "sounds.db"))
	require.NoError(t, err)
	defer db.Close()

	n, err := db.ImportList(file)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	name, err := db.Name(946)
	assert.NoError(t, err)
	assert.Equal(t, "Thunder", name)

	_, err = db.Name(1)
	assert.True(t, errors.Is(err, ErrUnknown))

	// Importing again replaces the previous contents
	require.NoError(t, db.Import([]Entry{{1, "Heal"}}))
	_, err = db.Name(946)
	assert.True(t, errors.Is(err, ErrUnknown))
	name, err = db.Name(1)
	assert.NoError(t, err)
	assert.Equal(t, "Heal", name)
}
