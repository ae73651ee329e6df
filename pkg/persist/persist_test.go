package persist

import (
	"errors"
	"testing"
	"time"

	"github.com/mrshanahan/keep-notes/pkg/notes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotes() []notes.Note {
	created := time.Date(2024, 3, 9, 14, 30, 15, 123_000_000, time.UTC)
	return []notes.Note{
		{ID: 1710000000002, Title: "Groceries", Text: "milk\neggs", Color: "#fbbc04", Tag: "home", IsPinned: true, CreatedAt: created.Add(time.Minute)},
		{ID: 1710000000001, Title: "", Text: "call \"Bob\" ✓", Color: "#ffffff", Tag: "", IsPinned: false, CreatedAt: created},
	}
}

func requireSameNotes(t *testing.T, want, got []notes.Note) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "createdAt of note %d", i)
		w, g := want[i], got[i]
		w.CreatedAt, g.CreatedAt = time.Time{}, time.Time{}
		assert.Equal(t, w, g)
	}
}

func TestAdapter_RoundTrip(t *testing.T) {
	kv := NewMemoryStore()
	a := NewAdapter(kv, "")
	assert.Equal(t, DefaultKey, a.Key())

	ns := sampleNotes()
	require.NoError(t, a.Save(ns))

	loaded, err := a.Load()
	require.NoError(t, err)
	requireSameNotes(t, ns, loaded)
}

func TestAdapter_RoundTripEmpty(t *testing.T) {
	a := NewAdapter(NewMemoryStore(), "")
	require.NoError(t, a.Save(nil))

	loaded, err := a.Load()
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestAdapter_SaveOverwrites(t *testing.T) {
	a := NewAdapter(NewMemoryStore(), "k")
	require.NoError(t, a.Save(sampleNotes()))
	require.NoError(t, a.Save(sampleNotes()[1:]))

	loaded, err := a.Load()
	require.NoError(t, err)
	requireSameNotes(t, sampleNotes()[1:], loaded)
}

func TestAdapter_StoredLayout(t *testing.T) {
	kv := NewMemoryStore()
	a := NewAdapter(kv, "")
	require.NoError(t, a.Save(sampleNotes()[1:]))

	raw, ok, err := kv.GetItem(DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{
		"id": 1710000000001,
		"title": "",
		"text": "call \"Bob\" ✓",
		"color": "#ffffff",
		"tag": "",
		"isPinned": false,
		"createdAt": "2024-03-09T14:30:15.123Z"
	}]`, string(raw))
}

func TestAdapter_LoadMissingKey(t *testing.T) {
	loaded, err := NewAdapter(NewMemoryStore(), "").Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAdapter_LoadAcceptsStringIDsAndExtraFields(t *testing.T) {
	kv := NewMemoryStore()
	require.NoError(t, kv.SetItem(DefaultKey, []byte(`[
		{"id":"17","title":"t","text":"","color":"#a7ffeb","tag":"x","isPinned":true,"createdAt":"2023-12-31T23:59:59Z","archived":false}
	]`)))

	loaded, err := NewAdapter(kv, "").Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, notes.ID(17), loaded[0].ID)
	assert.True(t, loaded[0].IsPinned)
	assert.Equal(t, 2023, loaded[0].CreatedAt.Year())
}

func TestAdapter_RoundTripKeepsSubMillisecondTimes(t *testing.T) {
	kv := NewMemoryStore()
	a := NewAdapter(kv, "")
	saved := []notes.Note{
		{ID: 2, Title: "nanos", Color: "#ffffff", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 123_456_789, time.UTC)},
		{ID: 1, Title: "millis", Color: "#ffffff", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 123_000_000, time.UTC)},
	}
	require.NoError(t, a.Save(saved))

	raw, _, err := kv.GetItem(DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createdAt":"2024-01-01T00:00:00.123456789Z"`)
	assert.Contains(t, string(raw), `"createdAt":"2024-01-01T00:00:00.123Z"`)

	loaded, err := a.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestAdapter_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"object instead of array", `{"id":1}`},
		{"null", `null`},
		{"null record", `[null]`},
		{"missing field", `[{"id":1,"title":"t","text":"","color":"#fff","isPinned":false,"createdAt":"2024-01-01T00:00:00Z"}]`},
		{"wrong type", `[{"id":1,"title":5,"text":"","color":"#fff","tag":"","isPinned":false,"createdAt":"2024-01-01T00:00:00Z"}]`},
		{"uuid id", `[{"id":"3f1c2a9e-7b5d-4e8f-9a61-0c2d4b6e8f10","title":"t","text":"","color":"#fff","tag":"","isPinned":false,"createdAt":"2024-01-01T00:00:00Z"}]`},
		{"bad id", `[{"id":"one","title":"t","text":"","color":"#fff","tag":"","isPinned":false,"createdAt":"2024-01-01T00:00:00Z"}]`},
		{"bad timestamp", `[{"id":1,"title":"t","text":"","color":"#fff","tag":"","isPinned":false,"createdAt":"yesterday"}]`},
		{"duplicate ids", `[
			{"id":1,"title":"a","text":"","color":"#fff","tag":"","isPinned":false,"createdAt":"2024-01-01T00:00:00Z"},
			{"id":1,"title":"b","text":"","color":"#fff","tag":"","isPinned":false,"createdAt":"2024-01-01T00:00:00Z"}
		]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryStore()
			require.NoError(t, kv.SetItem(DefaultKey, []byte(tt.raw)))

			loaded, err := NewAdapter(kv, "").Load()
			assert.NotNil(t, loaded)
			assert.Empty(t, loaded)

			var rerr *ReadError
			require.True(t, errors.As(err, &rerr), "got %v", err)
			assert.True(t, rerr.Corrupt)
			assert.Equal(t, DefaultKey, rerr.Key)
		})
	}
}

func TestAdapter_LoadUnavailable(t *testing.T) {
	kv := NewMemoryStore()
	kv.SetUnavailable(true)

	loaded, err := NewAdapter(kv, "").Load()
	assert.Empty(t, loaded)
	var rerr *ReadError
	require.True(t, errors.As(err, &rerr))
	assert.False(t, rerr.Corrupt)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAdapter_SaveFailures(t *testing.T) {
	kv := NewMemoryStore()
	kv.Quota = 10
	a := NewAdapter(kv, "")

	err := a.Save(sampleNotes())
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	kv.Quota = 0
	kv.SetUnavailable(true)
	assert.ErrorIs(t, a.Save(sampleNotes()), ErrUnavailable)

	kv.SetUnavailable(false)
	assert.NoError(t, a.Save(sampleNotes()))
}

func TestMemoryStore_QuotaCountsOtherKeys(t *testing.T) {
	kv := NewMemoryStore()
	kv.Quota = 8
	require.NoError(t, kv.SetItem("a", []byte("1234")))
	require.NoError(t, kv.SetItem("b", []byte("1234")))
	assert.ErrorIs(t, kv.SetItem("c", []byte("1")), ErrQuotaExceeded)
	require.NoError(t, kv.SetItem("a", []byte("12")), "replacing a value only counts the new size")
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	kv := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, kv.SetItem("k", value))
	value[0] = 'x'

	got, ok, err := kv.GetItem("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}
