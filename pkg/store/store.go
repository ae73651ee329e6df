// Package store owns the authoritative note collection. Every mutation is
// applied in memory first and then mirrored to storage; a failed save never
// undoes the mutation.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mrshanahan/keep-notes/internal/utils"
	"github.com/mrshanahan/keep-notes/pkg/notes"
	"github.com/mrshanahan/keep-notes/pkg/views"
)

type Saver interface {
	Save(ns []notes.Note) error
}

type Loader interface {
	Load() ([]notes.Note, error)
}

type LoadSaver interface {
	Loader
	Saver
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSaveErrorHandler is called with every failed save, after the failure
// has been logged.
func WithSaveErrorHandler(fn func(error)) Option {
	return func(s *Store) { s.onSaveError = fn }
}

type Store struct {
	mu          sync.Mutex
	notes       []notes.Note
	selectedTag string
	lastID      notes.ID
	lastSaveErr error

	saver       Saver
	now         func() time.Time
	logger      *slog.Logger
	onSaveError func(error)
}

// New creates a store holding a copy of initial. saver may be nil, in which
// case nothing is persisted.
func New(initial []notes.Note, saver Saver, opts ...Option) *Store {
	s := &Store{
		notes:  append([]notes.Note{}, initial...),
		saver:  saver,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, n := range s.notes {
		if n.ID > s.lastID {
			s.lastID = n.ID
		}
	}
	return s
}

// Open hydrates a store from ls. A load failure is logged and the store
// starts empty.
func Open(ls LoadSaver, opts ...Option) *Store {
	loaded, err := ls.Load()
	s := New(loaded, ls, opts...)
	if err != nil {
		s.logger.Warn("could not load saved notes; starting with an empty collection",
			"err", err)
	}
	s.logger.Info("notes loaded",
		"count", len(s.notes),
		"pinned", utils.Count(s.notes, func(n notes.Note) bool { return n.IsPinned }))
	return s
}

func (s *Store) Add(c notes.Candidate) (notes.Note, error) {
	if err := c.Validate(); err != nil {
		return notes.Note{}, err
	}
	c = c.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := notes.Note{
		ID:        s.nextID(now),
		Title:     c.Title,
		Text:      c.Text,
		Color:     c.Color,
		Tag:       c.Tag,
		IsPinned:  false,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
	s.notes = append([]notes.Note{n}, s.notes...)
	s.save()
	return n, nil
}

// Delete removes the note with the given id. It reports whether a note was
// removed; deleting an unknown id changes nothing.
func (s *Store) Delete(id notes.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	s.save()
	return true
}

func (s *Store) TogglePin(id notes.ID) (notes.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return notes.Note{}, false
	}
	s.notes[i].IsPinned = !s.notes[i].IsPinned
	s.save()
	return s.notes[i], true
}

// Update replaces the note sharing n.ID with n. No content validation is
// done here; callers assembling an edit are expected to check it.
func (s *Store) Update(n notes.Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(n.ID)
	if i < 0 {
		return false
	}
	s.notes[i] = n
	s.save()
	return true
}

// Edit applies fn to a copy of the note with the given id and stores the
// result, all under one lock, so a concurrent intent cannot be overwritten
// by a stale copy. It reports false when no note matches. An error from fn
// leaves the collection untouched and is returned as is. The id cannot be
// changed by fn.
func (s *Store) Edit(id notes.ID, fn func(*notes.Note) error) (notes.Note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return notes.Note{}, false, nil
	}
	edited := s.notes[i]
	if err := fn(&edited); err != nil {
		return notes.Note{}, true, err
	}
	edited.ID = id
	s.notes[i] = edited
	s.save()
	return edited, true, nil
}

// All returns a copy of the collection, most recently added first.
func (s *Store) All() []notes.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notes.Note{}, s.notes...)
}

func (s *Store) Get(id notes.ID) (notes.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return notes.Note{}, false
	}
	return s.notes[i], true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// SelectTag sets the active tag filter; "" clears it.
func (s *Store) SelectTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTag = tag
}

func (s *Store) SelectedTag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedTag
}

// Board derives the current view for the selected tag.
func (s *Store) Board() views.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return views.BuildBoard(s.notes, s.selectedTag)
}

// LastSaveError returns the error from the most recent save, or nil if it
// succeeded.
func (s *Store) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// Private

// nextID is time based but strictly increasing, so two adds within the same
// millisecond still get distinct ids.
func (s *Store) nextID(now time.Time) notes.ID {
	id := notes.ID(now.UnixMilli())
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) indexOf(id notes.ID) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// Must be called with s.mu held.
func (s *Store) save() {
	if s.saver == nil {
		return
	}
	s.lastSaveErr = s.saver.Save(s.notes)
	if s.lastSaveErr == nil {
		return
	}
	s.logger.Warn("failed to persist notes; in-memory state is kept",
		"count", len(s.notes),
		"err", s.lastSaveErr)
	if s.onSaveError != nil {
		s.onSaveError(s.lastSaveErr)
	}
}
