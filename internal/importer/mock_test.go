package importer

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

// mockGateway runs every transaction against the same mockTx and counts
// how transactions ended.
type mockGateway struct {
	tx        *mockTx
	commits   int
	rollbacks int
}

func newMockGateway() *mockGateway {
	return &mockGateway{tx: new(mockTx)}
}

func (g *mockGateway) WithinTx(_ context.Context, fn func(tx catalog.Tx) error) error {
	if err := fn(g.tx); err != nil {
		g.rollbacks++
		return err
	}
	g.commits++
	return nil
}

func (g *mockGateway) EachExportRecord(context.Context, func(rec *catalog.ExportRecord) error) error {
	panic("not used by the importer")
}

type mockTx struct {
	mock.Mock
}

func (m *mockTx) GetOrCreatePublisher(ctx context.Context, name string) (int64, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockTx) GetOrCreateGenre(ctx context.Context, name string) (int64, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockTx) GetOrCreateAuthor(ctx context.Context, name string) (int64, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockTx) FindBookByLibraryThingID(ctx context.Context, ltID int64) (int64, bool, error) {
	args := m.Called(ctx, ltID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockTx) FindBookByISBN13(ctx context.Context, isbn13 string) (int64, bool, error) {
	args := m.Called(ctx, isbn13)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockTx) InsertBook(ctx context.Context, b *catalog.BookWrite) (int64, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTx) UpdateBook(ctx context.Context, id int64, b *catalog.BookWrite) error {
	args := m.Called(ctx, id, b)
	return args.Error(0)
}

func (m *mockTx) DeleteBookAuthors(ctx context.Context, bookID int64) error {
	args := m.Called(ctx, bookID)
	return args.Error(0)
}

func (m *mockTx) AddBookAuthor(ctx context.Context, bookID, authorID int64, role string, order int) error {
	args := m.Called(ctx, bookID, authorID, role, order)
	return args.Error(0)
}

func (m *mockTx) InsertCopies(ctx context.Context, bookID int64, numbers []string) error {
	args := m.Called(ctx, bookID, numbers)
	return args.Error(0)
}

func (m *mockTx) RecalculateAvailability(ctx context.Context, bookID int64) error {
	args := m.Called(ctx, bookID)
	return args.Error(0)
}

func (m *mockTx) FillBookMetadata(ctx context.Context, bookID int64, cover, description string) (bool, error) {
	args := m.Called(ctx, bookID, cover, description)
	return args.Bool(0), args.Error(1)
}
