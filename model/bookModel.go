// model/book.go
package model

import "time"

type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookBorrowed  BookStatus = "borrowed"
)

func (s BookStatus) Valid() bool {
	return s == BookAvailable || s == BookBorrowed
}

type Book struct {
	ID          int64      `json:"id"`
	ISBN        string     `json:"isbn"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Publisher   *string    `json:"publisher,omitempty"`
	PublishDate *string    `json:"publish_date,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Status      BookStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
