package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/bullbear/config"
	"github.com/mohammad-safakhou/bullbear/internal/debate"
	"github.com/mohammad-safakhou/bullbear/internal/research"
	"github.com/mohammad-safakhou/bullbear/internal/runtime"
	"github.com/mohammad-safakhou/bullbear/internal/store"
	"github.com/mohammad-safakhou/bullbear/provider"
)

// Run wires the HTTP API and blocks serving it.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	// session store (required for the API; auth and history live here)
	if err := cfg.Storage.Postgres.Validate(); err != nil {
		return err
	}
	dsn := cfg.Storage.Postgres.DSN()
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		baseLogger.Printf("migrate: %v", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	oracle, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}

	researchProvider, err := BuildResearchProvider(ctx, cfg)
	if err != nil {
		return err
	}

	secret, err := runtime.LoadJWTSecret(cfg)
	if err != nil {
		return err
	}

	api := e.Group("/api")
	auth := &AuthHandler{Store: st, Secret: secret}
	auth.Register(api.Group("/auth"))

	dh := &DebatesHandler{
		Store:         st,
		Oracle:        oracle,
		Research:      researchProvider,
		Debate:        cfg.Debate,
		StreamEnabled: cfg.Server.StreamEnabled,
	}
	dh.Register(api.Group("/debates"), secret)

	return e.Start(cfg.Server.Address)
}

// BuildResearchProvider assembles the research capability from whatever is
// configured: warehouse for structured categories, document index for
// unstructured ones, redis as a read-through cache on top. With nothing
// configured the debate still runs, on an empty evidence bundle.
func BuildResearchProvider(ctx context.Context, cfg *config.Config) (debate.ResearchProvider, error) {
	var warehouse *research.Warehouse
	if cfg.Research.Warehouse.Configured() {
		dsn, err := cfg.Research.Warehouse.DSN()
		if err != nil {
			return nil, err
		}
		warehouse, err = research.OpenWarehouse(ctx, dsn)
		if err != nil {
			return nil, err
		}
	}

	var index *research.DocumentIndex
	if cfg.Research.IndexPath != "" {
		var err error
		index, err = research.OpenIndex(cfg.Research.IndexPath)
		if err != nil {
			return nil, err
		}
	}

	if warehouse == nil && index == nil {
		return research.Noop{}, nil
	}
	var p debate.ResearchProvider = research.NewProvider(warehouse, index)

	if cfg.Storage.Redis.Configured() {
		rdb, err := research.OpenCacheConn(ctx,
			cfg.Storage.Redis.Host, cfg.Storage.Redis.Port,
			cfg.Storage.Redis.Password, cfg.Storage.Redis.DB,
			cfg.Storage.Redis.Timeout)
		if err != nil {
			return nil, err
		}
		p = research.NewCache(p, rdb, cfg.Research.CacheTTL)
	}
	return p, nil
}
