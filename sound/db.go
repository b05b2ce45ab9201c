package sound

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// DB is a Table backed by a sqlite database so a list only needs importing
// once.
type DB struct {
	db *sql.DB
}

// NewDB opens or creates the database in file.
func NewDB(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sound (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.db.Close()
}

// Import replaces the contents of the database with the entries.
func (db *DB) Import(entries []Entry) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM sound"); err != nil {
		tx.Rollback()
		return err
	}

	for _, e := range entries {
		if _, err = tx.Exec("INSERT OR REPLACE INTO sound (id, name) VALUES (?, ?)", e.ID, e.Name); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// ImportList parses the sound list in file and imports it.
func (db *DB) ImportList(file string) (int, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	entries, err := ParseList(f)
	if err != nil {
		return 0, err
	}

	if err := db.Import(entries); err != nil {
		return 0, err
	}

	return len(entries), nil
}

// Name implements Table
func (db *DB) Name(id int) (string, error) {
	var name string
	switch err := db.db.QueryRow("SELECT name FROM sound WHERE id = ?", id).Scan(&name); err {
	case sql.ErrNoRows:
		return "", fmt.Errorf("%w: %#x", ErrUnknown, id)
	case nil:
		return name, nil
	default:
		return "", err
	}
}
