package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jinzhengdong/booklib/app/echoServer/respond"
	catalogsvc "github.com/jinzhengdong/booklib/service/catalog"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/books
func (h *Controller) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	search := c.QueryParam("search")

	out, err := h.Svc.List(c.Request().Context(), page, limit, search)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return respond.Fail(c, http.StatusInternalServerError, "failed to list books")
	}
	return respond.List(c, out.Books, out.Total, out.Page, out.Size)
}

// GET /api/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respond.Fail(c, http.StatusNotFound, "book not found")
	}

	b, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrNotFound:
			return respond.Fail(c, http.StatusNotFound, "book not found")
		default:
			h.Log.Error("book detail", "err", err, "id", id)
			return respond.Fail(c, http.StatusInternalServerError, "failed to load book")
		}
	}
	return respond.OK(c, "success", b)
}

// POST /api/books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "isbn, title and author are required")
	}

	id, err := h.Svc.Create(c.Request().Context(), req.fields())
	if err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrBadInput:
			return respond.Fail(c, http.StatusBadRequest, "isbn, title and author are required")
		case catalogsvc.ErrISBNTaken:
			return respond.Fail(c, http.StatusBadRequest, "isbn already exists")
		default:
			h.Log.Error("book create", "err", err)
			return respond.Fail(c, http.StatusInternalServerError, "failed to create book")
		}
	}
	return respond.Created(c, "book created", echo.Map{"id": id})
}

// PUT /api/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respond.Fail(c, http.StatusNotFound, "book not found")
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Fail(c, http.StatusBadRequest, "title and author are required")
	}

	if err := h.Svc.Update(c.Request().Context(), id, req.fields()); err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrBadInput:
			return respond.Fail(c, http.StatusBadRequest, "title and author are required")
		case catalogsvc.ErrNotFound:
			return respond.Fail(c, http.StatusNotFound, "book not found")
		default:
			h.Log.Error("book update", "err", err, "id", id)
			return respond.Fail(c, http.StatusInternalServerError, "failed to update book")
		}
	}
	return respond.OK(c, "book updated", nil)
}

// DELETE /api/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return respond.Fail(c, http.StatusNotFound, "book not found")
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrHasActiveLoan:
			return respond.Fail(c, http.StatusBadRequest, "book has an active borrow record and cannot be deleted")
		case catalogsvc.ErrNotFound:
			return respond.Fail(c, http.StatusNotFound, "book not found")
		default:
			h.Log.Error("book delete", "err", err, "id", id)
			return respond.Fail(c, http.StatusInternalServerError, "failed to delete book")
		}
	}
	return respond.OK(c, "book deleted", nil)
}
