package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NoteRow is a row in the notes table.
type NoteRow struct {
	ID        string
	Title     string
	Content   string
	OwnerID   string
	CreatedAt int64
}

// TagRow is a row in the tags table. Name is always stored normalized.
type TagRow struct {
	ID   string
	Name string
}

// CreateNoteWithTags inserts a note and links it to the given tag names inside
// a single transaction: either the note and all its join rows land, or nothing
// does. Tag names must already be normalized and deduplicated. Missing tag
// rows are created lazily; an insert racing another request's insert of the
// same name loses to the unique index and re-reads the winner's row.
func (s *Store) CreateNoteWithTags(ctx context.Context, note NoteRow, tagNames []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		note.ID, note.Title, note.Content, note.OwnerID, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	for _, name := range tagNames {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tags (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			uuid.New().String(), name)
		if err != nil {
			return fmt.Errorf("insert tag %q: %w", name, err)
		}

		var tagID string
		if err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("look up tag %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
			note.ID, tagID)
		if err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// GetNote returns a note by ID, or sql.ErrNoRows.
func (s *Store) GetNote(ctx context.Context, id string) (NoteRow, error) {
	var row NoteRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, owner_id, created_at FROM notes WHERE id = ?`,
		id).Scan(&row.ID, &row.Title, &row.Content, &row.OwnerID, &row.CreatedAt)
	return row, err
}

// ListNotes returns all notes, newest first.
func (s *Store) ListNotes(ctx context.Context) ([]NoteRow, error) {
	return s.queryNotes(ctx,
		`SELECT id, title, content, owner_id, created_at FROM notes ORDER BY created_at DESC, id`)
}

// ListNotesByOwner returns the notes owned by ownerID, newest first.
func (s *Store) ListNotesByOwner(ctx context.Context, ownerID string) ([]NoteRow, error) {
	return s.queryNotes(ctx,
		`SELECT id, title, content, owner_id, created_at FROM notes WHERE owner_id = ? ORDER BY created_at DESC, id`,
		ownerID)
}

// ListNotesByTag returns all notes linked to the named tag, newest first.
func (s *Store) ListNotesByTag(ctx context.Context, tagName string) ([]NoteRow, error) {
	return s.queryNotes(ctx,
		`SELECT n.id, n.title, n.content, n.owner_id, n.created_at
		 FROM notes n
		 JOIN note_tags nt ON nt.note_id = n.id
		 JOIN tags t ON t.id = nt.tag_id
		 WHERE t.name = ?
		 ORDER BY n.created_at DESC, n.id`,
		tagName)
}

// ListNotesByTagAndOwner returns ownerID's notes linked to the named tag.
func (s *Store) ListNotesByTagAndOwner(ctx context.Context, tagName, ownerID string) ([]NoteRow, error) {
	return s.queryNotes(ctx,
		`SELECT n.id, n.title, n.content, n.owner_id, n.created_at
		 FROM notes n
		 JOIN note_tags nt ON nt.note_id = n.id
		 JOIN tags t ON t.id = nt.tag_id
		 WHERE t.name = ? AND n.owner_id = ?
		 ORDER BY n.created_at DESC, n.id`,
		tagName, ownerID)
}

// UpdateNote replaces a note's title and content. Owner and creation time are
// deliberately not part of the statement; no caller input can touch them.
// Returns the number of rows affected (0 when the note does not exist).
func (s *Store) UpdateNote(ctx context.Context, id, title, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ? WHERE id = ?`, title, content, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteNote removes a note; its note_tags rows cascade, tag rows stay.
// Returns the number of rows affected (0 when the note does not exist).
func (s *Store) DeleteNote(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTagsForNote returns the tags linked to a note, sorted by name.
func (s *Store) ListTagsForNote(ctx context.Context, noteID string) ([]TagRow, error) {
	return s.queryTags(ctx,
		`SELECT t.id, t.name FROM tags t
		 JOIN note_tags nt ON nt.tag_id = t.id
		 WHERE nt.note_id = ?
		 ORDER BY t.name`,
		noteID)
}

// ListAllTags returns every tag in the system, sorted by name.
func (s *Store) ListAllTags(ctx context.Context) ([]TagRow, error) {
	return s.queryTags(ctx, `SELECT id, name FROM tags ORDER BY name`)
}

// ListTagsByOwner returns the distinct tags used by ownerID's notes, sorted
// by name.
func (s *Store) ListTagsByOwner(ctx context.Context, ownerID string) ([]TagRow, error) {
	return s.queryTags(ctx,
		`SELECT DISTINCT t.id, t.name FROM tags t
		 JOIN note_tags nt ON nt.tag_id = t.id
		 JOIN notes n ON n.id = nt.note_id
		 WHERE n.owner_id = ?
		 ORDER BY t.name`,
		ownerID)
}

// CountNoteTags returns the number of join rows for a note. Used by tests to
// verify the delete cascade.
func (s *Store) CountNoteTags(ctx context.Context, noteID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM note_tags WHERE note_id = ?`, noteID).Scan(&n)
	return n, err
}

func (s *Store) queryNotes(ctx context.Context, query string, args ...any) ([]NoteRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var row NoteRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Content, &row.OwnerID, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) queryTags(ctx context.Context, query string, args ...any) ([]TagRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TagRow
	for rows.Next() {
		var row TagRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
