package notesdb

import (
	"database/sql"
	_ "embed"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	//go:embed files/create_kv_tables.sql
	CREATE_KV_TABLES_SQL string
)

// Initialize opens (creating if needed) the sqlite database at path and
// ensures the key-value table exists.
func Initialize(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}

	_, err = tx.Exec(CREATE_KV_TABLES_SQL)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func GetItem(db *sql.DB, key string) ([]byte, bool, error) {
	stmt, err := db.Prepare("SELECT value FROM kv_items WHERE key = ?")
	if err != nil {
		return nil, false, err
	}
	defer stmt.Close()

	var value []byte
	err = stmt.QueryRow(key).Scan(&value)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	if value == nil {
		value = []byte{}
	}

	return value, true, nil
}

func SetItem(db *sql.DB, key string, value []byte) error {
	stmt, err := db.Prepare(`
        INSERT INTO kv_items (key, value, updated_on) VALUES (?, ?, ?)
            ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_on = excluded.updated_on`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if value == nil {
		value = []byte{}
	}
	_, err = stmt.Exec(key, value, formatTime(time.Now().UTC()))
	return err
}

// GetUpdatedOn returns when key was last written, or the zero time if it
// does not exist.
func GetUpdatedOn(db *sql.DB, key string) (time.Time, error) {
	stmt, err := db.Prepare("SELECT updated_on FROM kv_items WHERE key = ?")
	if err != nil {
		return time.Time{}, err
	}
	defer stmt.Close()

	var updatedOn string
	err = stmt.QueryRow(key).Scan(&updatedOn)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	} else if err != nil {
		return time.Time{}, err
	}
	return parseTime(updatedOn)
}

// KVStore exposes the database as a persist.KeyValueStore.
type KVStore struct {
	DB *sql.DB
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{DB: db}
}

func (s *KVStore) GetItem(key string) ([]byte, bool, error) {
	return GetItem(s.DB, key)
}

func (s *KVStore) SetItem(key string, value []byte) error {
	return SetItem(s.DB, key, value)
}

func (s *KVStore) Close() error {
	return s.DB.Close()
}

// Private

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
