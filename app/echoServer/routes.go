package echoServer

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jinzhengdong/booklib/app/echoServer/controller/book"
	"github.com/jinzhengdong/booklib/app/echoServer/controller/borrow"
)

type C struct {
	Book   *book.Controller
	Borrow *borrow.Controller
}

func Register(e *echo.Echo, c C) {
	// Service index, like the original root endpoint.
	e.GET("/", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{
			"message": "Library Management API",
			"version": "1.0.0",
			"endpoints": echo.Map{
				"books":  "/api/books",
				"borrow": "/api/borrow",
			},
		})
	})

	api := e.Group("/api")

	// Catalog
	api.GET("/books", c.Book.List)
	api.GET("/books/:id", c.Book.Detail)
	api.POST("/books", c.Book.Create)
	api.PUT("/books/:id", c.Book.Update)
	api.DELETE("/books/:id", c.Book.Delete)

	// Circulation
	api.POST("/borrow/borrow", c.Borrow.Borrow)
	api.PUT("/borrow/return/:id", c.Borrow.Return)
	api.GET("/borrow/records", c.Borrow.Records)
}
