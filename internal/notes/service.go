package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/PotatoBoi2658/notesapp/internal/auth"
	"github.com/PotatoBoi2658/notesapp/internal/db"
	"github.com/PotatoBoi2658/notesapp/internal/errs"
)

// Service handles note CRUD operations using the db layer.
type Service struct {
	store *db.Store
	clock auth.Clock
}

// NewService creates a new notes service.
func NewService(store *db.Store) *Service {
	return &Service{store: store, clock: systemClock{}}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SetClock replaces the clock used by the service. Intended for testing.
func (s *Service) SetClock(c auth.Clock) {
	s.clock = c
}

// List returns the notes visible to the principal, newest first, each with its
// tags attached. Administrators see every note; everyone else only their own.
func (s *Service) List(ctx context.Context, principal *auth.User) ([]Note, error) {
	if principal == nil {
		return nil, errs.New(errs.PermissionDenied, "authentication required")
	}

	var rows []db.NoteRow
	var err error
	if principal.IsAdmin() {
		rows, err = s.store.ListNotes(ctx)
	} else {
		rows, err = s.store.ListNotesByOwner(ctx, principal.ID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "list notes", err)
	}

	return s.attachTags(ctx, rows)
}

// Get retrieves a single note. Missing identifiers yield a not-found error;
// notes owned by someone else yield permission denied for non-admins.
func (s *Service) Get(ctx context.Context, principal *auth.User, noteID string) (*Note, error) {
	if noteID == "" {
		return nil, errs.New(errs.NotFound, "note not found")
	}

	row, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.New(errs.NotFound, "note not found")
		}
		return nil, errs.Wrap(errs.Internal, "get note", err)
	}

	note := noteFromRow(row)
	if !CanAccess(principal, note) {
		return nil, errs.New(errs.PermissionDenied, "you do not have access to this note")
	}

	tags, err := s.store.ListTagsForNote(ctx, noteID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "list note tags", err)
	}
	note.Tags = tagsFromRows(tags)

	return note, nil
}

// Create validates input, normalizes the raw tag string, and persists the note
// together with its tag and join rows in a single transaction. A failure at
// any step leaves no partial note behind.
func (s *Service) Create(ctx context.Context, principal *auth.User, params CreateNoteParams) (*Note, error) {
	if principal == nil {
		return nil, errs.New(errs.PermissionDenied, "authentication required")
	}

	title := strings.TrimSpace(params.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	tagNames := NormalizeTags(params.RawTags)
	for _, name := range tagNames {
		if utf8.RuneCountInString(name) > MaxTagLen {
			return nil, errs.Newf(errs.InvalidArgument, "tag %q exceeds %d characters", name, MaxTagLen)
		}
	}

	row := db.NoteRow{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   params.Content,
		OwnerID:   principal.ID,
		CreatedAt: s.clock.Now().UTC().Unix(),
	}

	if err := s.store.CreateNoteWithTags(ctx, row, tagNames); err != nil {
		return nil, errs.Wrap(errs.Internal, "create note", err)
	}

	return s.Get(ctx, principal, row.ID)
}

// Update applies a title/content edit. Owner, tags, and creation time are
// never touched regardless of caller input.
func (s *Service) Update(ctx context.Context, principal *auth.User, noteID string, params UpdateNoteParams) (*Note, error) {
	existing, err := s.Get(ctx, principal, noteID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(params.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	affected, err := s.store.UpdateNote(ctx, existing.ID, title, params.Content)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "update note", err)
	}
	if affected == 0 {
		// Deleted between the read and the write.
		return nil, errs.New(errs.NotFound, "note not found")
	}

	existing.Title = title
	existing.Content = params.Content
	return existing, nil
}

// Delete removes a note. Join rows cascade away with it; tag rows persist even
// when no note references them anymore.
func (s *Service) Delete(ctx context.Context, principal *auth.User, noteID string) error {
	if _, err := s.Get(ctx, principal, noteID); err != nil {
		return err
	}

	affected, err := s.store.DeleteNote(ctx, noteID)
	if err != nil {
		return errs.Wrap(errs.Internal, "delete note", err)
	}
	if affected == 0 {
		return errs.New(errs.NotFound, "note not found")
	}

	return nil
}

// ListByTag returns the principal's visible notes carrying the given tag.
// The tag name is normalized before lookup so URL casing doesn't matter.
func (s *Service) ListByTag(ctx context.Context, principal *auth.User, tagName string) ([]Note, error) {
	if principal == nil {
		return nil, errs.New(errs.PermissionDenied, "authentication required")
	}

	normalized := NormalizeTags(tagName)
	if len(normalized) != 1 {
		return nil, errs.Newf(errs.InvalidArgument, "invalid tag name %q", tagName)
	}
	name := normalized[0]

	var rows []db.NoteRow
	var err error
	if principal.IsAdmin() {
		rows, err = s.store.ListNotesByTag(ctx, name)
	} else {
		rows, err = s.store.ListNotesByTagAndOwner(ctx, name, principal.ID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "list notes by tag", err)
	}

	return s.attachTags(ctx, rows)
}

// ListTags returns the tags visible to the principal, sorted by name:
// every tag for administrators, only tags used by the principal's own notes
// for everyone else.
func (s *Service) ListTags(ctx context.Context, principal *auth.User) ([]Tag, error) {
	if principal == nil {
		return nil, errs.New(errs.PermissionDenied, "authentication required")
	}

	var rows []db.TagRow
	var err error
	if principal.IsAdmin() {
		rows, err = s.store.ListAllTags(ctx)
	} else {
		rows, err = s.store.ListTagsByOwner(ctx, principal.ID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "list tags", err)
	}

	return tagsFromRows(rows), nil
}

// Helpers

func validateTitle(title string) error {
	if title == "" {
		return errs.New(errs.InvalidArgument, "title is required")
	}
	// Limits count characters, matching the schema's length() CHECKs.
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return errs.Newf(errs.InvalidArgument, "title exceeds %d characters", MaxTitleLen)
	}
	return nil
}

func (s *Service) attachTags(ctx context.Context, rows []db.NoteRow) ([]Note, error) {
	notes := make([]Note, 0, len(rows))
	for _, row := range rows {
		note := noteFromRow(row)
		tags, err := s.store.ListTagsForNote(ctx, row.ID)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, fmt.Sprintf("list tags for note %s", row.ID), err)
		}
		note.Tags = tagsFromRows(tags)
		notes = append(notes, *note)
	}
	return notes, nil
}

func noteFromRow(row db.NoteRow) *Note {
	return &Note{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		OwnerID:   row.OwnerID,
		CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
	}
}

func tagsFromRows(rows []db.TagRow) []Tag {
	tags := make([]Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, Tag{ID: row.ID, Name: row.Name})
	}
	return tags
}
