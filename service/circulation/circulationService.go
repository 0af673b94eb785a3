package circulation

import (
	"context"
	"errors"
	"strings"

	"github.com/jinzhengdong/booklib/model"
	borrowrepo "github.com/jinzhengdong/booklib/repository/borrow"
	"github.com/jinzhengdong/booklib/util/database"
)

// errors used by controllers

type ErrCode string

const (
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrNotAvailable   ErrCode = "BOOK_NOT_AVAILABLE"
	ErrRecordNotFound ErrCode = "RECORD_NOT_FOUND"
	ErrBadStatus      ErrCode = "BAD_STATUS_FILTER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type RecordRow = model.BorrowRecordRow

type RecordPage struct {
	Records []RecordRow
	Total   int64
	Page    int
	Size    int
}

// TxRunner is the transaction scope of the storage gateway.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(q database.Querier) error) error
}

type Repo interface {
	GetBookForUpdate(ctx context.Context, q database.Querier, bookID int64) (*borrowrepo.BookState, error)
	InsertRecord(ctx context.Context, q database.Querier, bookID int64, name, phone string) (int64, error)
	SetBookStatus(ctx context.Context, q database.Querier, bookID int64, status model.BookStatus) error
	GetActiveForUpdate(ctx context.Context, q database.Querier, recordID int64) (*borrowrepo.ActiveRecord, error)
	MarkReturned(ctx context.Context, q database.Querier, recordID int64) error
	ListRecords(ctx context.Context, p borrowrepo.ListParams) ([]model.BorrowRecordRow, int64, error)
}

type Service interface {
	// Borrow creates an active record and flips the book to borrowed.
	Borrow(ctx context.Context, bookID int64, borrowerName, borrowerPhone string) (int64, error)

	// Return closes an active record and frees the book.
	Return(ctx context.Context, recordID int64) error

	// ListRecords pages through borrow records joined with their book.
	ListRecords(ctx context.Context, page, pageSize int, status string) (*RecordPage, error)
}

type service struct {
	tx TxRunner
	r  Repo
}

func New(tx TxRunner, r Repo) Service { return &service{tx: tx, r: r} }

// Borrow checks availability and writes both rows inside one transaction,
// so the check is serialized behind the book's row lock. Two concurrent
// borrows on the same book cannot both pass the status check.
func (s *service) Borrow(ctx context.Context, bookID int64, borrowerName, borrowerPhone string) (int64, error) {
	borrowerName = strings.TrimSpace(borrowerName)
	borrowerPhone = strings.TrimSpace(borrowerPhone)
	if bookID <= 0 || borrowerName == "" || borrowerPhone == "" {
		return 0, makeErr(ErrBadInput)
	}

	var recordID int64
	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		book, err := s.r.GetBookForUpdate(ctx, q, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return makeErr(ErrBookNotFound)
		}
		if book.Status != model.BookAvailable {
			return makeErr(ErrNotAvailable)
		}

		recordID, err = s.r.InsertRecord(ctx, q, bookID, borrowerName, borrowerPhone)
		if err != nil {
			return err
		}
		return s.r.SetBookStatus(ctx, q, bookID, model.BookBorrowed)
	})
	if err != nil {
		return 0, err
	}
	return recordID, nil
}

// Return loads the record filtered to status borrowing, so an unknown id
// and an already-returned record both surface as not found.
func (s *service) Return(ctx context.Context, recordID int64) error {
	if recordID <= 0 {
		return makeErr(ErrBadInput)
	}

	return s.tx.WithTx(ctx, func(q database.Querier) error {
		rec, err := s.r.GetActiveForUpdate(ctx, q, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return makeErr(ErrRecordNotFound)
		}

		if err := s.r.MarkReturned(ctx, q, rec.ID); err != nil {
			return err
		}
		return s.r.SetBookStatus(ctx, q, rec.BookID, model.BookAvailable)
	})
}

func (s *service) ListRecords(ctx context.Context, page, pageSize int, status string) (*RecordPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := model.RecordStatus(strings.TrimSpace(status))
	if filter != "" && !filter.Valid() {
		return nil, makeErr(ErrBadStatus)
	}

	records, total, err := s.r.ListRecords(ctx, borrowrepo.ListParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		Status: filter,
	})
	if err != nil {
		return nil, err
	}
	return &RecordPage{Records: records, Total: total, Page: page, Size: pageSize}, nil
}
