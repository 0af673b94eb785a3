package borrowrepo

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
	Status model.RecordStatus // empty = all
}

// BookState is the slice of a book the borrow workflow needs to look at
// while holding the row lock.
type BookState struct {
	ID     int64
	Status model.BookStatus
}

// ActiveRecord identifies a not-yet-returned borrow record and its book.
type ActiveRecord struct {
	ID     int64
	BookID int64
}

type Repo interface {
	GetBookForUpdate(ctx context.Context, q database.Querier, bookID int64) (*BookState, error)
	InsertRecord(ctx context.Context, q database.Querier, bookID int64, name, phone string) (int64, error)
	SetBookStatus(ctx context.Context, q database.Querier, bookID int64, status model.BookStatus) error
	GetActiveForUpdate(ctx context.Context, q database.Querier, recordID int64) (*ActiveRecord, error)
	MarkReturned(ctx context.Context, q database.Querier, recordID int64) error
	ListRecords(ctx context.Context, p ListParams) ([]model.BorrowRecordRow, int64, error)
}

type repo struct{ q database.Querier }

func New(q database.Querier) Repo { return &repo{q: q} }

func (r *repo) GetBookForUpdate(ctx context.Context, q database.Querier, bookID int64) (*BookState, error) {
	const stmt = `
SELECT id, status
FROM books
WHERE id = $1
FOR UPDATE`
	var b BookState
	err := q.QueryRowContext(ctx, stmt, bookID).Scan(&b.ID, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) InsertRecord(ctx context.Context, q database.Querier, bookID int64, name, phone string) (int64, error) {
	const stmt = `
INSERT INTO borrow_records (book_id, borrower_name, borrower_phone, borrow_date, status)
VALUES ($1, $2, $3, CURRENT_DATE, 'borrowing')
RETURNING id`
	var id int64
	if err := q.QueryRowContext(ctx, stmt, bookID, name, phone).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) SetBookStatus(ctx context.Context, q database.Querier, bookID int64, status model.BookStatus) error {
	const stmt = `UPDATE books SET status = $2, updated_at = NOW() WHERE id = $1`
	res, err := q.ExecContext(ctx, stmt, bookID, string(status))
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return fmt.Errorf("book %d vanished while updating status", bookID)
	}
	return nil
}

func (r *repo) GetActiveForUpdate(ctx context.Context, q database.Querier, recordID int64) (*ActiveRecord, error) {
	const stmt = `
SELECT id, book_id
FROM borrow_records
WHERE id = $1 AND status = 'borrowing'
FOR UPDATE`
	var rec ActiveRecord
	err := q.QueryRowContext(ctx, stmt, recordID).Scan(&rec.ID, &rec.BookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repo) MarkReturned(ctx context.Context, q database.Querier, recordID int64) error {
	const stmt = `
UPDATE borrow_records
SET status = 'returned', return_date = CURRENT_DATE
WHERE id = $1 AND status = 'borrowing'`
	res, err := q.ExecContext(ctx, stmt, recordID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ListRecords(ctx context.Context, p ListParams) ([]model.BorrowRecordRow, int64, error) {
	ds := dialect.From(goqu.T("borrow_records").As("br")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("br.book_id").Eq(goqu.I("b.id"))))
	if p.Status != "" {
		ds = ds.Where(goqu.I("br.status").Eq(string(p.Status)))
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := ds.Select(
		goqu.I("br.id"), goqu.I("br.book_id"),
		goqu.I("br.borrower_name"), goqu.I("br.borrower_phone"),
		goqu.L("br.borrow_date::text").As("borrow_date"),
		goqu.L("br.return_date::text").As("return_date"),
		goqu.I("br.status"), goqu.I("br.created_at"),
		goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.isbn"),
	).
		Order(goqu.I("br.created_at").Desc(), goqu.I("br.id").Desc()).
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

	out := make([]model.BorrowRecordRow, 0, p.Limit)
	for rows.Next() {
		var (
			rec        model.BorrowRecordRow
			returnDate sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.BookID, &rec.BorrowerName, &rec.BorrowerPhone,
			&rec.BorrowDate, &returnDate, &rec.Status, &rec.CreatedAt,
			&rec.Title, &rec.Author, &rec.ISBN,
		); err != nil {
			return nil, 0, err
		}
		if returnDate.Valid {
			rec.ReturnDate = &returnDate.String
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}
