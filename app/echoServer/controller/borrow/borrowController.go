package borrow

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jinzhengdong/booklib/app/echoServer/respond"
	"github.com/jinzhengdong/booklib/service/circulation"
)

type Controller struct {
	Svc circulation.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/borrow/borrow
func (h *Controller) Borrow(c echo.Context) error {
	var req BorrowReq
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "book_id, borrower_name and borrower_phone are required")
	}

	id, err := h.Svc.Borrow(c.Request().Context(), req.BookID, req.BorrowerName, req.BorrowerPhone)
	if err != nil {
		switch circulation.Code(err) {
		case circulation.ErrBadInput:
			return respond.Fail(c, http.StatusBadRequest, "book_id, borrower_name and borrower_phone are required")
		case circulation.ErrBookNotFound:
			return respond.Fail(c, http.StatusNotFound, "book not found")
		case circulation.ErrNotAvailable:
			return respond.Fail(c, http.StatusBadRequest, "book is already borrowed")
		default:
			h.Log.Error("borrow", "err", err, "book_id", req.BookID)
			return respond.Fail(c, http.StatusInternalServerError, "failed to borrow book")
		}
	}
	return respond.Created(c, "borrowed", echo.Map{"id": id})
}

// PUT /api/borrow/return/:id
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respond.Fail(c, http.StatusNotFound, "borrow record not found or already returned")
	}

	if err := h.Svc.Return(c.Request().Context(), id); err != nil {
		switch circulation.Code(err) {
		case circulation.ErrRecordNotFound:
			return respond.Fail(c, http.StatusNotFound, "borrow record not found or already returned")
		case circulation.ErrBadInput:
			return respond.Fail(c, http.StatusBadRequest, "invalid id")
		default:
			h.Log.Error("return", "err", err, "record_id", id)
			return respond.Fail(c, http.StatusInternalServerError, "failed to return book")
		}
	}
	return respond.OK(c, "returned", nil)
}

// GET /api/borrow/records
func (h *Controller) Records(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	status := c.QueryParam("status")

	out, err := h.Svc.ListRecords(c.Request().Context(), page, limit, status)
	if err != nil {
		switch circulation.Code(err) {
		case circulation.ErrBadStatus:
			return respond.Fail(c, http.StatusBadRequest, "status must be borrowing or returned")
		default:
			h.Log.Error("records list", "err", err)
			return respond.Fail(c, http.StatusInternalServerError, "failed to list borrow records")
		}
	}
	return respond.List(c, out.Records, out.Total, out.Page, out.Size)
}
