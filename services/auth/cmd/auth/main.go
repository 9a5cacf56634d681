package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/auth"
	"github.com/example/ott-platform/internal/platform/config"
	"github.com/example/ott-platform/internal/platform/db"
	"github.com/example/ott-platform/internal/platform/events"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/internal/platform/logging"
	"github.com/example/ott-platform/internal/platform/natsconn"
	"github.com/example/ott-platform/internal/platform/run"
	authconfig "github.com/example/ott-platform/services/auth/internal/config"
	"github.com/example/ott-platform/services/auth/internal/handlers"
	"github.com/example/ott-platform/services/auth/internal/store"
	"github.com/example/ott-platform/services/auth/internal/tokens"
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

	authCfg, err := authconfig.LoadAuth()
	if err != nil {
		log.Error("auth config", zap.Error(err))
		run.Exit(1)
	}

	pool, err := db.Open(context.Background())
	if err != nil {
		log.Error("db open", zap.Error(err))
		run.Exit(1)
	}
	defer pool.Close()

	var publisher *events.Publisher
	if nc, err := natsconn.Connect(natsconn.Options{}); err != nil {
		log.Warn("nats connect failed; auth events disabled", zap.Error(err))
	} else {
		defer nc.Close()
		if js, err := nc.JetStream(); err != nil {
			log.Warn("jetstream init failed; auth events disabled", zap.Error(err))
		} else {
			publisher = events.New(js, log)
		}
	}

	deps := handlers.AuthDeps{
		Store: store.NewPostgresStore(pool),
		Tokens: tokens.Service{
			Secret:          authCfg.JWTSecret,
			AccessTokenTTL:  authCfg.AccessTokenTTL,
			RefreshTokenTTL: authCfg.RefreshTokenTTL,
		},
		Cfg:    authCfg,
		Events: publisher,
	}
	verifier := auth.JWTVerifier{Secret: authCfg.JWTSecret}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error { return pool.Ping(context.Background()) },
	})
	r.Post("/v1/auth/register", handlers.Register(deps))
	r.Post("/v1/auth/login", handlers.Login(deps))
	r.Post("/v1/auth/refresh", handlers.Refresh(deps))
	r.Post("/v1/auth/logout", handlers.Logout(deps))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Get("/v1/auth/me", handlers.Me(deps))
		r.Get("/v1/profiles", handlers.ListProfiles(deps))
		r.Post("/v1/profiles", handlers.CreateProfile(deps))
		r.Patch("/v1/profiles/{profile_id}", handlers.UpdateProfile(deps))
		r.Delete("/v1/profiles/{profile_id}", handlers.DeleteProfile(deps))
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
