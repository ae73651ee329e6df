package notes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultColor = "#ffffff"

// Palette is the set of colors offered when creating a note. It is
// presentation metadata; Note.Color accepts any string.
var Palette = []string{
	"#ffffff", // white
	"#f28b82", // red
	"#fbbc04", // yellow
	"#fff475", // light yellow
	"#ccff90", // green
	"#a7ffeb", // teal
	"#cbf0f8", // light blue
	"#aecbfa", // blue
	"#d7aefb", // purple
	"#fdcfe8", // pink
	"#e6c9a8", // brown
	"#e8eaed", // gray
}

// ID identifies a note. It is encoded as a JSON number but older stored
// data may carry it as a numeric string, so both are accepted on decode.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	parsed, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid note id %s: %w", data, err)
	}
	*id = ID(parsed)
	return nil
}

func ParseID(s string) (ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(parsed), nil
}

type Note struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Color     string    `json:"color"`
	Tag       string    `json:"tag"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasContent reports whether the note has a non-blank title or text.
func (n Note) HasContent() bool {
	return strings.TrimSpace(n.Title) != "" || strings.TrimSpace(n.Text) != ""
}

// Candidate is the user-supplied part of a note before it is added.
type Candidate struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Tag   string `json:"tag"`
}

// Normalize trims the free-text fields and fills in the default color.
func (c Candidate) Normalize() Candidate {
	c.Title = strings.TrimSpace(c.Title)
	c.Text = strings.TrimSpace(c.Text)
	c.Tag = strings.TrimSpace(c.Tag)
	if c.Color == "" {
		c.Color = DefaultColor
	}
	return c
}

func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Text) == "" {
		return &ValidationError{Message: "Please add a title or note content"}
	}
	return nil
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
