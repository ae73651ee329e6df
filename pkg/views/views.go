// Package views derives what a renderer shows from a snapshot of the note
// collection. Every function here is pure; callers re-derive after each
// change instead of caching.
package views

import (
	"sort"

	"github.com/mrshanahan/keep-notes/internal/utils"
	"github.com/mrshanahan/keep-notes/pkg/notes"
)

const (
	PinnedTitle   = "Pinned"
	OthersTitle   = "Others"
	AllNotesTitle = "All Notes"

	NoNotesMessage = "No notes yet. Create your first note above!"
)

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// FilterByTag returns the notes whose tag equals tag exactly. An empty tag
// means no filter.
func FilterByTag(ns []notes.Note, tag string) []notes.Note {
	if tag == "" {
		return utils.Filter(ns, func(notes.Note) bool { return true })
	}
	return utils.Filter(ns, func(n notes.Note) bool { return n.Tag == tag })
}

// PartitionByPin splits ns into pinned and unpinned notes, keeping input
// order within each half.
func PartitionByPin(ns []notes.Note) (pinned, unpinned []notes.Note) {
	pinned = utils.Filter(ns, func(n notes.Note) bool { return n.IsPinned })
	unpinned = utils.Filter(ns, func(n notes.Note) bool { return !n.IsPinned })
	return pinned, unpinned
}

// UniqueSortedTags lists each distinct non-empty tag in ascending order with
// the number of notes in ns carrying it. Pass the unfiltered collection.
func UniqueSortedTags(ns []notes.Note) []TagCount {
	counts := map[string]int{}
	for _, n := range ns {
		if n.Tag != "" {
			counts[n.Tag]++
		}
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	result := make([]TagCount, 0, len(tags))
	for _, tag := range tags {
		result = append(result, TagCount{Tag: tag, Count: counts[tag]})
	}
	return result
}

func IsEmpty(filtered []notes.Note) bool {
	return len(filtered) == 0
}

// EmptyMessage is the text shown when the filtered view has no notes.
func EmptyMessage(selectedTag string) string {
	if selectedTag != "" {
		return "No notes with tag \"" + selectedTag + "\""
	}
	return NoNotesMessage
}

// Board is the full derived view for one render.
type Board struct {
	SelectedTag  string       `json:"selectedTag"`
	Total        int          `json:"total"`
	Tags         []TagCount   `json:"tags"`
	PinnedTitle  string       `json:"pinnedTitle"`
	Pinned       []notes.Note `json:"pinned"`
	OthersTitle  string       `json:"othersTitle"`
	Others       []notes.Note `json:"others"`
	Empty        bool         `json:"empty"`
	EmptyMessage string       `json:"emptyMessage,omitempty"`
}

func BuildBoard(all []notes.Note, selectedTag string) Board {
	filtered := FilterByTag(all, selectedTag)
	pinned, others := PartitionByPin(filtered)

	board := Board{
		SelectedTag: selectedTag,
		Total:       len(all),
		Tags:        UniqueSortedTags(all),
		PinnedTitle: PinnedTitle,
		Pinned:      pinned,
		OthersTitle: AllNotesTitle,
		Others:      others,
		Empty:       IsEmpty(filtered),
	}
	if len(pinned) > 0 {
		board.OthersTitle = OthersTitle
	}
	if board.Empty {
		board.EmptyMessage = EmptyMessage(selectedTag)
	}
	return board
}
