package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/config"
	"github.com/example/ott-platform/internal/platform/db"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/internal/platform/logging"
	"github.com/example/ott-platform/internal/platform/natsconn"
	"github.com/example/ott-platform/internal/platform/run"
	workercfg "github.com/example/ott-platform/services/activity/internal/config"
	"github.com/example/ott-platform/services/activity/internal/handlers"
	"github.com/example/ott-platform/services/activity/internal/store"
	"github.com/example/ott-platform/services/activity/internal/worker"
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

	history := store.NewPostgresHistoryStore(pool)

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc: func() error { return pool.Ping(context.Background()) },
	})
	r.Get("/v1/history/{user_id}", handlers.GetHistory(history, log))

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if nc, err := natsconn.Connect(natsconn.Options{}); err != nil {
			log.Warn("nats connect failed; history consumer disabled", zap.Error(err))
		} else {
			defer nc.Close()
			wcfg := workercfg.LoadWorker()
			consumer, err := worker.New(nc, history, wcfg.BatchSize, wcfg.BatchIntervalMs, log)
			if err != nil {
				log.Error("history consumer init", zap.Error(err))
			} else {
				go consumer.Run(ctx)
			}
		}

		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}
