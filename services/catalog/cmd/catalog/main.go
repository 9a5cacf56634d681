package main

import (
	"context"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/auth"
	"github.com/example/ott-platform/internal/platform/config"
	"github.com/example/ott-platform/internal/platform/db"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/internal/platform/logging"
	"github.com/example/ott-platform/internal/platform/run"
	"github.com/example/ott-platform/services/catalog/internal/handlers"
	"github.com/example/ott-platform/services/catalog/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	pool, err := db.Open(context.Background())
	if err != nil {
		log.Error("db open", zap.Error(err))
		run.Exit(1)
	}
	defer pool.Close()

	cs := store.NewPostgresContentStore(pool)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error { return pool.Ping(context.Background()) },
	})
	r.Get("/v1/content", handlers.ListContent(cs, log))
	r.Get("/v1/content/{id}", handlers.GetContent(cs, log))
	r.Get("/v1/content/{id}/seasons", handlers.GetSeasons(cs, log))
	r.Get("/v1/seasons/{id}/episodes", handlers.GetEpisodes(cs, log))
	r.Get("/v1/search", handlers.SearchContent(cs, log))
	r.Get("/v1/genres", handlers.ListGenres(cs, log))
	r.Get("/v1/trending", handlers.Trending(cs, log))

	// Operator write path, admin token required.
	r.Group(func(r chi.Router) {
		verifier := auth.JWTVerifier{Secret: []byte(strings.TrimSpace(os.Getenv("JWT_SECRET")))}
		r.Use(auth.RequireUser(verifier))
		r.Use(auth.RequireAdmin)
		r.Post("/v1/content", handlers.CreateContent(cs, log))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}
