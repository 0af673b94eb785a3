package bookrepo

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/jinzhengdong/booklib/model"
)

var bookCols = []string{
	"id", "isbn", "title", "author", "publisher", "publish_date",
	"category", "status", "created_at", "updated_at",
}

func bookRow(id int64, isbn, title string) []driver.Value {
	now := time.Now()
	return []driver.Value{id, isbn, title, "Author", nil, nil, nil, "available", now, now}
}

func TestList_NoSearch(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "books"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT .+ FROM "books" ORDER BY "created_at" DESC, "id" DESC LIMIT .+ OFFSET .+`).
		WillReturnRows(sqlmock.NewRows(bookCols).
			AddRow(bookRow(2, "222", "B")...).
			AddRow(bookRow(1, "111", "A")...))

	books, total, err := r.List(context.Background(), ListParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, books, 2)
	require.Equal(t, "222", books[0].ISBN)
	require.Equal(t, model.BookAvailable, books[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_SearchBindsPatternThreeTimes(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "books" WHERE .+ILIKE`).
		WithArgs("%go%", "%go%", "%go%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM "books" WHERE .+ILIKE`).
		WithArgs("%go%", "%go%", "%go%", int64(10)).
		WillReturnRows(sqlmock.NewRows(bookCols))

	books, total, err := r.List(context.Background(), ListParams{Limit: 10, Offset: 0, Search: "go"})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, books)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_MissingIsNilNil(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectQuery(`(?s)SELECT .+FROM books\s+WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(bookCols))

	b, err := r.GetByID(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestGetByID_ScansOptionals(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	now := time.Now()
	mock.ExpectQuery(`(?s)SELECT .+FROM books\s+WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(bookCols).
			AddRow(int64(1), "111", "A", "B", "Pub", "2020-01-02", "Prog", "borrowed", now, now))

	b, err := r.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, model.BookBorrowed, b.Status)
	require.NotNil(t, b.Publisher)
	require.Equal(t, "Pub", *b.Publisher)
	require.Equal(t, "2020-01-02", *b.PublishDate)
	require.Equal(t, "Prog", *b.Category)
}

func TestInsert_ReturnsGeneratedID(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectQuery(`(?s)INSERT INTO books .+RETURNING id`).
		WithArgs("111", "A", "B", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := r.Insert(context.Background(), Fields{ISBN: "111", Title: "A", Author: "B"})
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ReportsAffectedRows(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectExec(`(?s)UPDATE books\s+SET title`).
		WithArgs(int64(1), "A2", "B2", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	aff, err := r.Update(context.Background(), 1, Fields{Title: "A2", Author: "B2"})
	require.NoError(t, err)
	require.Equal(t, int64(1), aff)
}

func TestHasActiveBorrow(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := r.HasActiveBorrow(context.Background(), sqldb, 7)
	require.NoError(t, err)
	require.True(t, active)
}

func TestLockForUpdate_LocksRow(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectQuery(`SELECT id FROM books WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	found, err := r.LockForUpdate(context.Background(), sqldb, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockForUpdate_Missing(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectQuery(`SELECT id FROM books WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	found, err := r.LockForUpdate(context.Background(), sqldb, 99)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDelete_ReportsAffectedRows(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()
	r := New(sqldb)

	mock.ExpectExec(`DELETE FROM books WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	aff, err := r.Delete(context.Background(), sqldb, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), aff)
	require.NoError(t, mock.ExpectationsWereMet())
}
