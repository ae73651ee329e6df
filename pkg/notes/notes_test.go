package notes

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Candidate
		wantErr bool
	}{
		{"title only", Candidate{Title: "A"}, false},
		{"text only", Candidate{Text: "body"}, false},
		{"both empty", Candidate{}, true},
		{"whitespace only", Candidate{Title: "", Text: "  "}, true},
		{"tabs and newlines", Candidate{Title: "\t", Text: "\n"}, true},
		{"tag alone is not content", Candidate{Tag: "work", Color: "#f28b82"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "Please add a title or note content", verr.Message)
		})
	}
}

func TestCandidate_Normalize(t *testing.T) {
	c := Candidate{Title: "  A ", Text: "\tbody\n", Tag: " work "}.Normalize()
	assert.Equal(t, "A", c.Title)
	assert.Equal(t, "body", c.Text)
	assert.Equal(t, "work", c.Tag)
	assert.Equal(t, DefaultColor, c.Color)

	c = Candidate{Title: "A", Color: "#aecbfa"}.Normalize()
	assert.Equal(t, "#aecbfa", c.Color)
}

func TestNote_HasContent(t *testing.T) {
	assert.True(t, Note{Title: "x"}.HasContent())
	assert.True(t, Note{Text: "x"}.HasContent())
	assert.False(t, Note{Title: " ", Text: "", Tag: "work"}.HasContent())
}

func TestID_UnmarshalJSON(t *testing.T) {
	var n struct {
		ID ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1700000000000}`), &n))
	assert.Equal(t, ID(1700000000000), n.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "42"}`), &n))
	assert.Equal(t, ID(42), n.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id": "abc"}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"id": 1.5}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &n))
}

func TestID_MarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Note{ID: 7})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":7,`)
	assert.Contains(t, string(b), `"isPinned":false`)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("123")
	require.NoError(t, err)
	assert.Equal(t, "123", id.String())

	_, err = ParseID("x1")
	assert.Error(t, err)
}

func TestPalette(t *testing.T) {
	assert.Len(t, Palette, 12)
	assert.Equal(t, DefaultColor, Palette[0])
}
