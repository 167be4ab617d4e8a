package datastore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "pinakes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func intPtr(v int) *int           { return &v }
func int64p(v int64) *int64       { return &v }
func floatPtr(v float64) *float64 { return &v }

func insertBook(t *testing.T, store *SQLiteStore, b *catalog.BookWrite) int64 {
	t.Helper()
	var id int64
	err := store.WithinTx(context.Background(), func(tx catalog.Tx) error {
		var err error
		id, err = tx.InsertBook(context.Background(), b)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestGetOrCreate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		id, created, err := tx.GetOrCreatePublisher(ctx, "Adelphi")
		require.NoError(t, err)
		assert.True(t, created)

		again, created, err := tx.GetOrCreatePublisher(ctx, "  Adelphi ")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, id, again)

		composed, created, err := tx.GetOrCreateAuthor(ctx, "Jos\u00e9 Saramago")
		require.NoError(t, err)
		assert.True(t, created)
		decomposed, created, err := tx.GetOrCreateAuthor(ctx, "Jose\u0301 Saramago")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, composed, decomposed)

		_, created, err = tx.GetOrCreateGenre(ctx, "Fiction")
		require.NoError(t, err)
		assert.True(t, created)

		_, _, err = tx.GetOrCreateGenre(ctx, "   ")
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)

	for table, want := range map[string]int{"publishers": 1, "authors": 1, "genres": 1} {
		n, err := store.Count(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, want, n, table)
	}
}

func TestInsertAndFindBook(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	b := &catalog.BookWrite{LibraryThingID: int64p(4242)}
	b.Title = "Il nome della rosa"
	b.ISBN13 = "9788845292613"
	b.Year = intPtr(1980)
	b.Price = floatPtr(14.5)
	b.Format = catalog.FormatPaper
	b.Rating = intPtr(5)
	id := insertBook(t, store, b)

	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		got, found, err := tx.FindBookByLibraryThingID(ctx, 4242)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, id, got)

		got, found, err = tx.FindBookByISBN13(ctx, "9788845292613")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, id, got)

		_, found, err = tx.FindBookByISBN13(ctx, "")
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = tx.FindBookByLibraryThingID(ctx, 1)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
	require.NoError(t, err)

	rec, err := store.Book(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Il nome della rosa", rec.Title)
	require.NotNil(t, rec.Year)
	assert.Equal(t, 1980, *rec.Year)
	require.NotNil(t, rec.Price)
	assert.InDelta(t, 14.5, *rec.Price, 0.001)
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 5, *rec.Rating)
	assert.Nil(t, rec.Pages)
	assert.Empty(t, rec.Subtitle)
	require.NotNil(t, rec.LibraryThingID)
	assert.Equal(t, int64(4242), *rec.LibraryThingID)
}

func TestUpdateBookKeepsAbsentValues(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	b := &catalog.BookWrite{}
	b.Title = "Dune"
	b.Pages = intPtr(412)
	b.Description = "Spice."
	id := insertBook(t, store, b)

	update := &catalog.BookWrite{}
	update.Title = "Dune (Deluxe)"
	update.Year = intPtr(1965)
	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		return tx.UpdateBook(ctx, id, update)
	})
	require.NoError(t, err)

	rec, err := store.Book(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune (Deluxe)", rec.Title)
	require.NotNil(t, rec.Year)
	assert.Equal(t, 1965, *rec.Year)
	require.NotNil(t, rec.Pages)
	assert.Equal(t, 412, *rec.Pages)
	assert.Equal(t, "Spice.", rec.Description)
}

func TestSoftDeletedBooksAreInvisible(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	b := &catalog.BookWrite{LibraryThingID: int64p(7)}
	b.Title = "Gone"
	b.ISBN13 = "9780000000002"
	id := insertBook(t, store, b)

	require.NoError(t, store.SoftDeleteBook(ctx, id))
	assert.ErrorIs(t, store.SoftDeleteBook(ctx, id), ErrBookNotFound)

	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		_, found, err := tx.FindBookByISBN13(ctx, "9780000000002")
		require.NoError(t, err)
		assert.False(t, found)
		_, found, err = tx.FindBookByLibraryThingID(ctx, 7)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
	require.NoError(t, err)

	_, err = store.Book(ctx, id)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestAuthorsAndCopies(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	b := &catalog.BookWrite{}
	b.Title = "Good Omens"
	b.ISBN13 = "9780060853983"
	id := insertBook(t, store, b)

	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		for i, name := range []string{"Terry Pratchett", "Neil Gaiman"} {
			authorID, _, err := tx.GetOrCreateAuthor(ctx, name)
			if err != nil {
				return err
			}
			if err := tx.AddBookAuthor(ctx, id, authorID, catalog.RolePrimary, i); err != nil {
				return err
			}
		}
		if err := tx.InsertCopies(ctx, id, catalog.CopyNumbers(b.ISBN13, "", id, 3)); err != nil {
			return err
		}
		return tx.RecalculateAvailability(ctx, id)
	})
	require.NoError(t, err)

	authors, err := store.BookAuthors(ctx, id)
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "Terry Pratchett", authors[0].Name)
	assert.Equal(t, "Neil Gaiman", authors[1].Name)
	assert.Equal(t, catalog.RolePrimary, authors[1].Role)

	copies, err := store.Copies(ctx, id)
	require.NoError(t, err)
	require.Len(t, copies, 3)
	assert.Equal(t, "9780060853983-1", copies[0].Number)
	assert.Equal(t, "available", copies[2].Status)

	rec, err := store.Book(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.CopiesTotal)
	assert.Equal(t, 3, rec.CopiesLeft)

	// Re-crediting replaces the author list
	err = store.WithinTx(ctx, func(tx catalog.Tx) error {
		if err := tx.DeleteBookAuthors(ctx, id); err != nil {
			return err
		}
		authorID, created, err := tx.GetOrCreateAuthor(ctx, "Neil Gaiman")
		require.False(t, created)
		if err != nil {
			return err
		}
		return tx.AddBookAuthor(ctx, id, authorID, catalog.RolePrimary, 0)
	})
	require.NoError(t, err)

	authors, err = store.BookAuthors(ctx, id)
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "Neil Gaiman", authors[0].Name)
}

func TestFillBookMetadata(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	b := &catalog.BookWrite{}
	b.Title = "Has description"
	b.Description = "Original."
	id := insertBook(t, store, b)

	var changed bool
	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		var err error
		changed, err = tx.FillBookMetadata(ctx, id, "https://covers.example/1.jpg", "Replacement.")
		return err
	})
	require.NoError(t, err)
	assert.True(t, changed)

	rec, err := store.Book(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://covers.example/1.jpg", rec.Cover)
	assert.Equal(t, "Original.", rec.Description)

	err = store.WithinTx(ctx, func(tx catalog.Tx) error {
		var err error
		changed, err = tx.FillBookMetadata(ctx, id, "https://covers.example/2.jpg", "Other.")
		return err
	})
	require.NoError(t, err)
	assert.False(t, changed, "both fields are already filled")

	rec, err = store.Book(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://covers.example/1.jpg", rec.Cover)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		if _, _, err := tx.GetOrCreatePublisher(ctx, "Einaudi"); err != nil {
			return err
		}
		b := &catalog.BookWrite{}
		b.Title = "Never stored"
		if _, err := tx.InsertBook(ctx, b); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	for _, table := range []string{"publishers", "books"} {
		n, err := store.Count(ctx, table)
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}
}

func TestEachExportRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var deleted int64
	err := store.WithinTx(ctx, func(tx catalog.Tx) error {
		pubID, _, err := tx.GetOrCreatePublisher(ctx, "Mondadori")
		if err != nil {
			return err
		}
		genreID, _, err := tx.GetOrCreateGenre(ctx, "Romanzo")
		if err != nil {
			return err
		}

		first := &catalog.BookWrite{PublisherID: &pubID, GenreID: &genreID}
		first.Title = "Primo"
		firstID, err := tx.InsertBook(ctx, first)
		if err != nil {
			return err
		}
		authorID, _, err := tx.GetOrCreateAuthor(ctx, "Italo Calvino")
		if err != nil {
			return err
		}
		if err := tx.AddBookAuthor(ctx, firstID, authorID, catalog.RolePrimary, 0); err != nil {
			return err
		}

		second := &catalog.BookWrite{}
		second.Title = "Secondo"
		if _, err := tx.InsertBook(ctx, second); err != nil {
			return err
		}

		third := &catalog.BookWrite{}
		third.Title = "Cancellato"
		deleted, err = tx.InsertBook(ctx, third)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, store.SoftDeleteBook(ctx, deleted))

	var records []*catalog.ExportRecord
	err = store.EachExportRecord(ctx, func(rec *catalog.ExportRecord) error {
		records = append(records, rec)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Primo", records[0].Title)
	assert.Equal(t, "Mondadori", records[0].Publisher)
	assert.Equal(t, "Romanzo", records[0].Genre)
	assert.Equal(t, []string{"Italo Calvino"}, records[0].Authors)
	assert.Equal(t, "Secondo", records[1].Title)
	assert.Empty(t, records[1].Publisher)
	assert.Empty(t, records[1].Authors)

	stop := errors.New("stop")
	err = store.EachExportRecord(ctx, func(*catalog.ExportRecord) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestCountRejectsUnknownTable(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Count(context.Background(), "sqlite_master")
	assert.Error(t, err)
}
