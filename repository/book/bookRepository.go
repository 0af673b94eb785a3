package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration

	"github.com/jinzhengdong/booklib/model"
	"github.com/jinzhengdong/booklib/util/database"
)

var dialect = goqu.Dialect("postgres")

type ListParams struct {
	Limit  int
	Offset int
	Search string
}

type Fields struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   *string
	PublishDate *string
	Category    *string
}

type Repo interface {
	List(ctx context.Context, p ListParams) ([]model.Book, int64, error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	Insert(ctx context.Context, f Fields) (int64, error)
	Update(ctx context.Context, id int64, f Fields) (int64, error)
	LockForUpdate(ctx context.Context, q database.Querier, id int64) (bool, error)
	HasActiveBorrow(ctx context.Context, q database.Querier, bookID int64) (bool, error)
	Delete(ctx context.Context, q database.Querier, id int64) (int64, error)
}

type repo struct{ q database.Querier }

func New(q database.Querier) Repo { return &repo{q: q} }

// bookColumns keeps the select list in one place. The date is cast to text
// so it round-trips as YYYY-MM-DD instead of a midnight timestamp.
var bookColumns = []any{
	goqu.C("id"), goqu.C("isbn"), goqu.C("title"), goqu.C("author"),
	goqu.C("publisher"), goqu.L("publish_date::text").As("publish_date"),
	goqu.C("category"), goqu.C("status"), goqu.C("created_at"), goqu.C("updated_at"),
}

func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	var (
		b                           model.Book
		publisher, pubDate, categry sql.NullString
	)
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author,
		&publisher, &pubDate, &categry, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if publisher.Valid {
		b.Publisher = &publisher.String
	}
	if pubDate.Valid {
		b.PublishDate = &pubDate.String
	}
	if categry.Valid {
		b.Category = &categry.String
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context, p ListParams) ([]model.Book, int64, error) {
	ds := dialect.From("books")
	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
			goqu.C("isbn").ILike(pattern),
		))
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := ds.Select(bookColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Limit(uint(p.Limit)).Offset(uint(p.Offset)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Book, 0, p.Limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, isbn, title, author, publisher, publish_date::text, category,
       status, created_at, updated_at
FROM books
WHERE id = $1`
	b, err := scanBook(r.q.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *repo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`
	var exists bool
	err := r.q.QueryRowContext(ctx, q, isbn).Scan(&exists)
	return exists, err
}

func (r *repo) Insert(ctx context.Context, f Fields) (int64, error) {
	const q = `
INSERT INTO books (isbn, title, author, publisher, publish_date, category, status)
VALUES ($1,$2,$3,$4,$5::date,$6,'available')
RETURNING id`
	var id int64
	if err := r.q.QueryRowContext(ctx, q,
		f.ISBN, f.Title, f.Author, f.Publisher, f.PublishDate, f.Category).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update leaves isbn and status alone; those change through their own paths.
func (r *repo) Update(ctx context.Context, id int64, f Fields) (int64, error) {
	const q = `
UPDATE books
SET title = $2, author = $3, publisher = $4, publish_date = $5::date,
    category = $6, updated_at = NOW()
WHERE id = $1`
	res, err := r.q.ExecContext(ctx, q, id, f.Title, f.Author, f.Publisher, f.PublishDate, f.Category)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LockForUpdate grabs the book's row lock so the active-record check and
// the delete see a stable row. False means no such book.
func (r *repo) LockForUpdate(ctx context.Context, q database.Querier, id int64) (bool, error) {
	const stmt = `SELECT id FROM books WHERE id = $1 FOR UPDATE`
	var got int64
	err := q.QueryRowContext(ctx, stmt, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) HasActiveBorrow(ctx context.Context, q database.Querier, bookID int64) (bool, error) {
	const stmt = `
SELECT EXISTS (
	SELECT 1 FROM borrow_records
	WHERE book_id = $1 AND status = 'borrowing'
)`
	var exists bool
	err := q.QueryRowContext(ctx, stmt, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) Delete(ctx context.Context, q database.Querier, id int64) (int64, error) {
	const stmt = `DELETE FROM books WHERE id = $1`
	res, err := q.ExecContext(ctx, stmt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
