// Package notes implements the note-taking core: tag normalization, ownership
// checks, and CRUD against the shared store. All operations take the acting
// principal; scoping and access decisions happen here, not in handlers.
package notes

import "time"

// Field limits, enforced both here and by CHECK constraints in the schema.
const (
	MaxTitleLen = 200
	MaxTagLen   = 50
)

// Note is a user-owned note with its tags eagerly attached.
type Note struct {
	ID        string
	Title     string
	Content   string
	OwnerID   string
	CreatedAt time.Time
	Tags      []Tag
}

// Tag is a normalized tag name. Names are unique system-wide.
type Tag struct {
	ID   string
	Name string
}

// CreateNoteParams contains parameters for creating a note.
// RawTags is the free-text comma-separated tag field from the create form.
type CreateNoteParams struct {
	Title   string
	Content string
	RawTags string
}

// UpdateNoteParams contains parameters for updating a note. Only title and
// content are mutable; owner, tags, and timestamps are never accepted from
// caller input.
type UpdateNoteParams struct {
	Title   string
	Content string
}
