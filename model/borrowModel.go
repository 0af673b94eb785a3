// model/borrow.go
package model

import "time"

type RecordStatus string

const (
	RecordBorrowing RecordStatus = "borrowing"
	RecordReturned  RecordStatus = "returned"
)

func (s RecordStatus) Valid() bool {
	return s == RecordBorrowing || s == RecordReturned
}

type BorrowRecord struct {
	ID            int64        `json:"id"`
	BookID        int64        `json:"book_id"`
	BorrowerName  string       `json:"borrower_name"`
	BorrowerPhone string       `json:"borrower_phone"`
	BorrowDate    string       `json:"borrow_date"`
	ReturnDate    *string      `json:"return_date,omitempty"`
	Status        RecordStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

// BorrowRecordRow is a BorrowRecord joined with its book for listings.
type BorrowRecordRow struct {
	BorrowRecord
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}
