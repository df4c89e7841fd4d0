package db_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/PotatoBoi2658/notesapp/internal/db"
	"github.com/PotatoBoi2658/notesapp/internal/db/testutil"
	"github.com/PotatoBoi2658/notesapp/internal/testdb"
)

var storeTestCounter atomic.Int64

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := testdb.NewStoreInMemory(fmt.Sprintf("store-%d", storeTestCounter.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *db.Store, id, email string) {
	t.Helper()
	err := store.CreateUser(context.Background(), db.UserRow{
		ID:        id,
		Email:     email,
		Role:      "user",
		CreatedAt: time.Now().Unix(),
	})
	require.NoError(t, err)
}

func TestCreateNoteWithTags_PersistsNoteAndTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "user-1", "a@example.com")

	row := db.NoteRow{
		ID:        "note-1",
		Title:     "Groceries",
		Content:   "milk\neggs",
		OwnerID:   "user-1",
		CreatedAt: 1700000000,
	}
	require.NoError(t, store.CreateNoteWithTags(ctx, row, []string{"home", "shopping"}))

	got, err := store.GetNote(ctx, "note-1")
	require.NoError(t, err)
	require.Equal(t, row, got)

	tags, err := store.ListTagsForNote(ctx, "note-1")
	require.NoError(t, err)
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	require.Equal(t, []string{"home", "shopping"}, names)
}

func TestCreateNoteWithTags_ReusesExistingTagRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "user-1", "a@example.com")

	note := func(id string) db.NoteRow {
		return db.NoteRow{ID: id, Title: "t", Content: "c", OwnerID: "user-1", CreatedAt: 1}
	}
	require.NoError(t, store.CreateNoteWithTags(ctx, note("note-1"), []string{"work"}))
	require.NoError(t, store.CreateNoteWithTags(ctx, note("note-2"), []string{"work", "ideas"}))

	all, err := store.ListAllTags(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2, "tag names are unique across notes")

	first, err := store.ListTagsForNote(ctx, "note-1")
	require.NoError(t, err)
	second, err := store.ListTagsForNote(ctx, "note-2")
	require.NoError(t, err)
	require.Equal(t, first[0].ID, tagByName(t, second, "work").ID)
}

func TestCreateNoteWithTags_RollsBackOnDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "user-1", "a@example.com")

	row := db.NoteRow{ID: "note-1", Title: "first", Content: "", OwnerID: "user-1", CreatedAt: 1}
	require.NoError(t, store.CreateNoteWithTags(ctx, row, nil))

	dup := db.NoteRow{ID: "note-1", Title: "second", Content: "", OwnerID: "user-1", CreatedAt: 2}
	err := store.CreateNoteWithTags(ctx, dup, []string{"leaked"})
	require.Error(t, err)

	// The failed insert must not leave partial state behind.
	got, err := store.GetNote(ctx, "note-1")
	require.NoError(t, err)
	require.Equal(t, "first", got.Title)

	all, err := store.ListAllTags(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestDeleteNote_RemovesJoinRowsKeepsTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "user-1", "a@example.com")

	row := db.NoteRow{ID: "note-1", Title: "t", Content: "c", OwnerID: "user-1", CreatedAt: 1}
	require.NoError(t, store.CreateNoteWithTags(ctx, row, []string{"work", "ideas"}))

	count, err := store.CountNoteTags(ctx, "note-1")
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	affected, err := store.DeleteNote(ctx, "note-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	count, err = store.CountNoteTags(ctx, "note-1")
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	all, err := store.ListAllTags(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2, "tag rows survive note deletion")
}

func TestListNotesByTag_FiltersByOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "user-1", "a@example.com")
	seedUser(t, store, "user-2", "b@example.com")

	require.NoError(t, store.CreateNoteWithTags(ctx,
		db.NoteRow{ID: "note-1", Title: "mine", Content: "", OwnerID: "user-1", CreatedAt: 2}, []string{"work"}))
	require.NoError(t, store.CreateNoteWithTags(ctx,
		db.NoteRow{ID: "note-2", Title: "theirs", Content: "", OwnerID: "user-2", CreatedAt: 1}, []string{"work"}))

	all, err := store.ListNotesByTag(ctx, "work")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := store.ListNotesByTagAndOwner(ctx, "work", "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "note-1", mine[0].ID)
}

func TestStore_HostileStringsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "user-1", "a@example.com")

	var seq atomic.Int64
	rapid.Check(t, func(t *rapid.T) {
		title := testutil.ArbitraryNoteTitle().Draw(t, "title")
		content := testutil.ArbitraryNoteContent().Draw(t, "content")
		// SQLite TEXT columns reject embedded NUL through this driver.
		if strings.ContainsRune(title, 0) || strings.ContainsRune(content, 0) {
			t.Skip("NUL bytes rejected at the boundary, not stored")
		}

		id := fmt.Sprintf("note-%d", seq.Add(1))
		row := db.NoteRow{ID: id, Title: title, Content: content, OwnerID: "user-1", CreatedAt: 1}
		if err := store.CreateNoteWithTags(ctx, row, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := store.GetNote(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != title || got.Content != content {
			t.Fatalf("round trip mismatch: got %q/%q", got.Title, got.Content)
		}
	})
}

func tagByName(t *testing.T, tags []db.TagRow, name string) db.TagRow {
	t.Helper()
	for _, tag := range tags {
		if tag.Name == name {
			return tag
		}
	}
	t.Fatalf("tag %q not found", name)
	return db.TagRow{}
}
