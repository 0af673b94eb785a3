// Package main library management API.
//
// @title           Library Management API
// @version         1.0
// @description     Book catalog and borrow/return circulation service.
// @BasePath        /api
// @schemes         http
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/jinzhengdong/booklib/app/echoServer"
	bookctrl "github.com/jinzhengdong/booklib/app/echoServer/controller/book"
	borrowctrl "github.com/jinzhengdong/booklib/app/echoServer/controller/borrow"
	"github.com/jinzhengdong/booklib/app/echoServer/validation"
	"github.com/jinzhengdong/booklib/config"
	bookrepo "github.com/jinzhengdong/booklib/repository/book"
	borrowrepo "github.com/jinzhengdong/booklib/repository/borrow"
	catalogsvc "github.com/jinzhengdong/booklib/service/catalog"
	"github.com/jinzhengdong/booklib/service/circulation"
	"github.com/jinzhengdong/booklib/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}
	if cfg.Env == "dev" {
		if err := db.Seed(ctx); err != nil {
			log.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	// repos
	br := bookrepo.New(db.Querier())
	rr := borrowrepo.New(db.Querier())

	// services
	cs := catalogsvc.New(db, br)
	cirs := circulation.New(db, rr)

	// controllers
	v := validator.New()
	bookC := &bookctrl.Controller{Svc: cs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: cirs, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = echoServer.ErrorHandler(log)
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// admin UI
	e.Static("/admin", cfg.StaticDir)

	echoServer.Register(e, echoServer.C{
		Book:   bookC,
		Borrow: borrowC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		slog.Info("starting server", "port", port)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown on interrupt
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	slog.Info("server stopped")
}
