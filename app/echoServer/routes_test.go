package echoServer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	bookctrl "github.com/jinzhengdong/booklib/app/echoServer/controller/book"
	borrowctrl "github.com/jinzhengdong/booklib/app/echoServer/controller/borrow"
	catalogsvc "github.com/jinzhengdong/booklib/service/catalog"
	"github.com/jinzhengdong/booklib/service/circulation"
)

type catalogStub struct{ catalogsvc.Service }

func (catalogStub) List(ctx context.Context, page, pageSize int, search string) (*catalogsvc.Page, error) {
	return &catalogsvc.Page{Books: []catalogsvc.Book{}, Total: 0, Page: 1, Size: 10}, nil
}

type circulationStub struct{ circulation.Service }

func newServer() *echo.Echo {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(log)
	RegisterMiddlewares(e)
	Register(e, C{
		Book:   &bookctrl.Controller{Svc: catalogStub{}, V: v, Log: log},
		Borrow: &borrowctrl.Controller{Svc: circulationStub{}, V: v, Log: log},
	})
	return e
}

func TestUnknownRouteGetsEnvelope404(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var env struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, -1, env.Code)
	require.NotEmpty(t, env.Msg)
}

func TestBooksRouteIsWired(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Code  int   `json:"code"`
		Count int64 `json:"count"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, 0, env.Code)
	require.Equal(t, 1, env.Page)
	require.Equal(t, 10, env.Limit)
}

func TestRootIndex(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/books")
}
