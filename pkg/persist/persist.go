// Package persist mirrors the note collection to a synchronous key-value
// store under a single key. The whole collection is written on every save;
// there is no diffing and no schema version.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mrshanahan/keep-notes/pkg/notes"
)

const DefaultKey = "keepNotes"

var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnavailable   = errors.New("storage unavailable")
)

// KeyValueStore is the storage contract the adapter needs. GetItem reports
// ok=false when the key has never been written.
type KeyValueStore interface {
	GetItem(key string) (value []byte, ok bool, err error)
	SetItem(key string, value []byte) error
}

// ReadError is returned by Load alongside an empty collection. Corrupt is
// set when the stored value exists but cannot be decoded into notes.
type ReadError struct {
	Key     string
	Corrupt bool
	Err     error
}

func (e *ReadError) Error() string {
	if e.Corrupt {
		return fmt.Sprintf("stored notes under %q are corrupt: %s", e.Key, e.Err)
	}
	return fmt.Sprintf("failed to read notes under %q: %s", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to save notes under %q: %s", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

type Adapter struct {
	kv       KeyValueStore
	key      string
	validate *validator.Validate
}

func NewAdapter(kv KeyValueStore, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{
		kv:       kv,
		key:      key,
		validate: validator.New(),
	}
}

func (a *Adapter) Key() string {
	return a.key
}

// Load returns the saved collection, or an empty one when nothing was saved.
// Any failure also yields an empty collection together with a *ReadError,
// which callers should treat as a warning.
func (a *Adapter) Load() ([]notes.Note, error) {
	raw, ok, err := a.kv.GetItem(a.key)
	if err != nil {
		return []notes.Note{}, &ReadError{Key: a.key, Err: err}
	}
	if !ok {
		return []notes.Note{}, nil
	}

	ns, err := a.decode(raw)
	if err != nil {
		return []notes.Note{}, &ReadError{Key: a.key, Corrupt: true, Err: err}
	}
	return ns, nil
}

// Save overwrites the stored value with the full collection.
func (a *Adapter) Save(ns []notes.Note) error {
	records := make([]record, 0, len(ns))
	for _, n := range ns {
		records = append(records, toRecord(n))
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return &WriteError{Key: a.key, Err: err}
	}
	if err := a.kv.SetItem(a.key, raw); err != nil {
		return &WriteError{Key: a.key, Err: err}
	}
	return nil
}

// Private

// record is the stored shape. Pointer fields let the validator tell a
// missing field apart from a zero value.
type record struct {
	ID        *notes.ID `json:"id" validate:"required"`
	Title     *string   `json:"title" validate:"required"`
	Text      *string   `json:"text" validate:"required"`
	Color     *string   `json:"color" validate:"required"`
	Tag       *string   `json:"tag" validate:"required"`
	IsPinned  *bool     `json:"isPinned" validate:"required"`
	CreatedAt *string   `json:"createdAt" validate:"required"`
}

func toRecord(n notes.Note) record {
	createdAt := formatTime(n.CreatedAt)
	return record{
		ID:        &n.ID,
		Title:     &n.Title,
		Text:      &n.Text,
		Color:     &n.Color,
		Tag:       &n.Tag,
		IsPinned:  &n.IsPinned,
		CreatedAt: &createdAt,
	}
}

func (a *Adapter) decode(raw []byte) ([]notes.Note, error) {
	var records []*record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errors.New("stored value is not an array")
	}

	ns := make([]notes.Note, 0, len(records))
	seen := map[notes.ID]bool{}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("record %d is null", i)
		}
		if err := a.validate.Struct(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if seen[*r.ID] {
			return nil, fmt.Errorf("record %d: duplicate id %s", i, *r.ID)
		}
		seen[*r.ID] = true

		createdAt, err := parseTime(*r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ns = append(ns, notes.Note{
			ID:        *r.ID,
			Title:     *r.Title,
			Text:      *r.Text,
			Color:     *r.Color,
			Tag:       *r.Tag,
			IsPinned:  *r.IsPinned,
			CreatedAt: createdAt,
		})
	}
	return ns, nil
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// formatTime writes millisecond ISO-8601, falling back to full nanosecond
// precision when the value carries a sub-millisecond part, so Load returns
// exactly what Save was given.
func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()%int(time.Millisecond) != 0 {
		return t.Format(time.RFC3339Nano)
	}
	return t.Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
