package book

import (
	"strings"

	catalogsvc "github.com/jinzhengdong/booklib/service/catalog"
)

type CreateBookReq struct {
	ISBN        string `json:"isbn" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Publisher   string `json:"publisher"`
	PublishDate string `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Category    string `json:"category"`
}

type UpdateBookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Publisher   string `json:"publisher"`
	PublishDate string `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Category    string `json:"category"`
}

func (r CreateBookReq) fields() catalogsvc.Fields {
	return catalogsvc.Fields{
		ISBN:        r.ISBN,
		Title:       r.Title,
		Author:      r.Author,
		Publisher:   opt(r.Publisher),
		PublishDate: opt(r.PublishDate),
		Category:    opt(r.Category),
	}
}

func (r UpdateBookReq) fields() catalogsvc.Fields {
	return catalogsvc.Fields{
		Title:       r.Title,
		Author:      r.Author,
		Publisher:   opt(r.Publisher),
		PublishDate: opt(r.PublishDate),
		Category:    opt(r.Category),
	}
}

func opt(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
