package server

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mrshanahan/keep-notes/pkg/notes"
	"github.com/mrshanahan/keep-notes/pkg/views"
)

var ErrDeleteNotConfirmed = errors.New("delete not confirmed: resend with confirm=true")

const EmptyEditMessage = "Note cannot be empty"

var ErrEmptyEdit = errors.New(EmptyEditMessage)

// API types

// EditRequest carries the fields of an edit; nil fields keep their current
// value.
type EditRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
	Tag   *string `json:"tag"`
	Color *string `json:"color"`
}

// apply trims the provided fields into n and rejects an edit that leaves
// both title and text empty.
func (e *EditRequest) apply(n *notes.Note) error {
	updated := *n
	if e.Title != nil {
		updated.Title = strings.TrimSpace(*e.Title)
	}
	if e.Text != nil {
		updated.Text = strings.TrimSpace(*e.Text)
	}
	if e.Tag != nil {
		updated.Tag = strings.TrimSpace(*e.Tag)
	}
	if e.Color != nil && *e.Color != "" {
		updated.Color = *e.Color
	}
	if !updated.HasContent() {
		return ErrEmptyEdit
	}
	*n = updated
	return nil
}

type FilterRequest struct {
	Tag string `json:"tag"`
}

type FilterResponse struct {
	SelectedTag string `json:"selectedTag"`
}

type TagsResponse struct {
	Total int              `json:"total"`
	Tags  []views.TagCount `json:"tags"`
}

type PaletteResponse struct {
	Default string   `json:"default"`
	Colors  []string `json:"colors"`
}

func getNoteFromContext(c *fiber.Ctx) notes.Note {
	return c.Locals(NoteLocalName).(notes.Note)
}

func (s *Server) GetBoard(c *fiber.Ctx) error {
	if c.Context().QueryArgs().Has("tag") {
		return c.JSON(views.BuildBoard(s.store.All(), strings.TrimSpace(c.Query("tag"))))
	}
	return c.JSON(s.store.Board())
}

func (s *Server) ListTags(c *fiber.Ctx) error {
	all := s.store.All()
	return c.JSON(TagsResponse{
		Total: len(all),
		Tags:  views.UniqueSortedTags(all),
	})
}

func (s *Server) CreateNote(c *fiber.Ctx) error {
	candidate := notes.Candidate{}
	if err := json.Unmarshal(c.Body(), &candidate); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	note, err := s.store.Add(candidate)
	var verr *notes.ValidationError
	if errors.As(err, &verr) {
		c.Status(fiber.StatusBadRequest)
		return c.SendString(verr.Message)
	} else if err != nil {
		s.logger.Error("failed to create note",
			"title", candidate.Title,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	s.setPersistenceWarning(c)
	c.Status(fiber.StatusCreated)
	return c.JSON(note)
}

func (s *Server) GetNote(c *fiber.Ctx) error {
	return c.JSON(getNoteFromContext(c))
}

func (s *Server) UpdateNote(c *fiber.Ctx) error {
	existing := getNoteFromContext(c)

	edit := &EditRequest{}
	if err := json.Unmarshal(c.Body(), edit); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	updated, found, err := s.store.Edit(existing.ID, edit.apply)
	if !found {
		// Deleted between lookup and edit.
		return c.SendStatus(fiber.StatusNotFound)
	}
	if errors.Is(err, ErrEmptyEdit) {
		c.Status(fiber.StatusBadRequest)
		return c.SendString(EmptyEditMessage)
	} else if err != nil {
		s.logger.Error("failed to edit note",
			"noteID", existing.ID,
			"err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	s.setPersistenceWarning(c)
	return c.JSON(updated)
}

func (s *Server) DeleteNote(c *fiber.Ctx) error {
	note := getNoteFromContext(c)
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if !confirmed {
		c.Status(fiber.StatusConflict)
		return c.SendString(ErrDeleteNotConfirmed.Error())
	}

	s.store.Delete(note.ID)
	s.setPersistenceWarning(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) TogglePin(c *fiber.Ctx) error {
	note := getNoteFromContext(c)
	toggled, ok := s.store.TogglePin(note.ID)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	s.setPersistenceWarning(c)
	return c.JSON(toggled)
}

func (s *Server) GetFilter(c *fiber.Ctx) error {
	return c.JSON(FilterResponse{SelectedTag: s.store.SelectedTag()})
}

func (s *Server) SelectTag(c *fiber.Ctx) error {
	req := &FilterRequest{}
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	s.store.SelectTag(strings.TrimSpace(req.Tag))
	return c.JSON(s.store.Board())
}

func (s *Server) GetPalette(c *fiber.Ctx) error {
	return c.JSON(PaletteResponse{
		Default: notes.DefaultColor,
		Colors:  notes.Palette,
	})
}

func (s *Server) setPersistenceWarning(c *fiber.Ctx) {
	if err := s.store.LastSaveError(); err != nil {
		c.Set(PersistenceWarningHeader, err.Error())
	}
}
