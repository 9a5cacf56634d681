package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/config"
	"github.com/example/ott-platform/internal/platform/events"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/internal/platform/logging"
	"github.com/example/ott-platform/internal/platform/natsconn"
	"github.com/example/ott-platform/internal/platform/redisconn"
	"github.com/example/ott-platform/internal/platform/run"
	"github.com/example/ott-platform/internal/platform/signing"
	svcconfig "github.com/example/ott-platform/services/streaming/internal/config"
	"github.com/example/ott-platform/services/streaming/internal/handlers"
	"github.com/example/ott-platform/services/streaming/internal/playback"
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

	svcCfg := svcconfig.Load()

	var sessions playback.SessionStore
	var index playback.RecencyIndex
	if svcCfg.RedisURL != "" {
		client, err := redisconn.Connect(context.Background(), redisconn.Options{URL: svcCfg.RedisURL})
		if err != nil {
			log.Error("redis connect", zap.Error(err))
			run.Exit(1)
		}
		defer func() { _ = client.Close() }()
		sessions = playback.NewRedisSessionStore(client, svcCfg.SessionTTL)
		index = playback.NewRedisRecencyIndex(client)
	} else {
		log.Warn("REDIS_URL not set; using in-memory playback stores (development only)")
		sessions = playback.NewInMemorySessionStore(svcCfg.SessionTTL)
		index = playback.NewInMemoryRecencyIndex()
	}

	// Event publishing is optional; a nil publisher is a no-op.
	var publisher *events.Publisher
	if nc, err := natsconn.Connect(natsconn.Options{}); err != nil {
		log.Warn("nats connect failed; playback events disabled", zap.Error(err))
	} else {
		defer nc.Close()
		if js, err := nc.JetStream(); err != nil {
			log.Warn("jetstream init failed; playback events disabled", zap.Error(err))
		} else {
			publisher = events.New(js, log)
		}
	}

	svc := &playback.Service{
		Sessions: sessions,
		Index:    index,
		Events:   publisher,
		Log:      log,
		ListCap:  svcCfg.ContinueWatchingLimit,
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)
	r.Post("/v1/playback/start", handlers.StartPlayback(svc, log))
	r.Put("/v1/playback/position", handlers.UpdatePosition(svc, log))
	r.Post("/v1/playback/complete", handlers.CompletePlayback(svc, log))
	r.Get("/v1/playback/session", handlers.GetSession(svc, log))
	r.Get("/v1/continue-watching/{user_id}/{profile_id}", handlers.GetContinueWatching(svc, log))
	var signer *signing.Signer
	if svcCfg.SigningSecret != "" {
		signer = signing.New(svcCfg.SigningSecret)
	}
	r.Get("/v1/content/{content_id}/manifest", handlers.GetManifest(svcCfg.ManifestBaseURL, signer))

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
