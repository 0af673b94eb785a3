// Package respond renders the uniform response envelope:
// code 0 on success, -1 on failure, plus pagination echoes for lists.
package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CodeOK   = 0
	CodeFail = -1
)

type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

type ListEnvelope struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Data  any    `json:"data"`
	Count int64  `json:"count"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

func OK(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusOK, Envelope{Code: CodeOK, Msg: msg, Data: data})
}

func Created(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Code: CodeOK, Msg: msg, Data: data})
}

func List(c echo.Context, data any, count int64, page, limit int) error {
	return c.JSON(http.StatusOK, ListEnvelope{
		Code: CodeOK, Msg: "success",
		Data: data, Count: count, Page: page, Limit: limit,
	})
}

func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Code: CodeFail, Msg: msg})
}
