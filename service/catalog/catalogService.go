package catalogsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jinzhengdong/booklib/model"
	bookrepo "github.com/jinzhengdong/booklib/repository/book"
	"github.com/jinzhengdong/booklib/util/database"
)

// errors used by controllers

type ErrCode string

const (
	ErrBadInput      ErrCode = "BAD_INPUT"
	ErrNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrISBNTaken     ErrCode = "ISBN_TAKEN"
	ErrHasActiveLoan ErrCode = "HAS_ACTIVE_LOAN"
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

type Book = model.Book

// Fields carries the caller-supplied book attributes. Optional values are
// nil when absent; a nil optional clears the stored value on update, which
// matches the full-row PUT semantics of the API.
type Fields = bookrepo.Fields

type Page struct {
	Books []Book
	Total int64
	Page  int
	Size  int
}

// TxRunner is the transaction scope of the storage gateway.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(q database.Querier) error) error
}

type Repo interface {
	List(ctx context.Context, p bookrepo.ListParams) ([]model.Book, int64, error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	Insert(ctx context.Context, f Fields) (int64, error)
	Update(ctx context.Context, id int64, f Fields) (int64, error)
	LockForUpdate(ctx context.Context, q database.Querier, id int64) (bool, error)
	HasActiveBorrow(ctx context.Context, q database.Querier, bookID int64) (bool, error)
	Delete(ctx context.Context, q database.Querier, id int64) (int64, error)
}

type Service interface {
	List(ctx context.Context, page, pageSize int, search string) (*Page, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
	Create(ctx context.Context, f Fields) (int64, error)
	Update(ctx context.Context, id int64, f Fields) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	tx TxRunner
	r  Repo
}

func New(tx TxRunner, r Repo) Service { return &service{tx: tx, r: r} }

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func (s *service) List(ctx context.Context, page, pageSize int, search string) (*Page, error) {
	page, pageSize = normalizePage(page, pageSize)
	books, total, err := s.r.List(ctx, bookrepo.ListParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, err
	}
	return &Page{Books: books, Total: total, Page: page, Size: pageSize}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Book, error) {
	b, err := s.r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, f Fields) (int64, error) {
	f.ISBN = strings.TrimSpace(f.ISBN)
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	if f.ISBN == "" || f.Title == "" || f.Author == "" {
		return 0, makeErr(ErrBadInput)
	}

	taken, err := s.r.ExistsByISBN(ctx, f.ISBN)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, makeErr(ErrISBNTaken)
	}
	return s.r.Insert(ctx, f)
}

func (s *service) Update(ctx context.Context, id int64, f Fields) error {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	if f.Title == "" || f.Author == "" {
		return makeErr(ErrBadInput)
	}

	aff, err := s.r.Update(ctx, id, f)
	if err != nil {
		return err
	}
	if aff == 0 {
		return makeErr(ErrNotFound)
	}
	return nil
}

// Delete locks the book row and re-checks for an active record inside one
// transaction, so a borrow cannot slip in between the check and the delete.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(q database.Querier) error {
		found, err := s.r.LockForUpdate(ctx, q, id)
		if err != nil {
			return err
		}
		if !found {
			return makeErr(ErrNotFound)
		}

		active, err := s.r.HasActiveBorrow(ctx, q, id)
		if err != nil {
			return err
		}
		if active {
			return makeErr(ErrHasActiveLoan)
		}

		aff, err := s.r.Delete(ctx, q, id)
		if err != nil {
			return err
		}
		if aff == 0 {
			return makeErr(ErrNotFound)
		}
		return nil
	})
}
