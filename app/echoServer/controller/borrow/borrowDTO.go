package borrow

type BorrowReq struct {
	BookID        int64  `json:"book_id" validate:"required,gt=0"`
	BorrowerName  string `json:"borrower_name" validate:"required"`
	BorrowerPhone string `json:"borrower_phone" validate:"required"`
}
