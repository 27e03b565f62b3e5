package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/sitepulse/sitepulse/internal/config/api"
	"github.com/sitepulse/sitepulse/internal/httpapi"
	"github.com/sitepulse/sitepulse/internal/obs"
	"github.com/sitepulse/sitepulse/internal/obs/retry"
	pg "github.com/sitepulse/sitepulse/internal/repository/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting api", zap.String("addr", cfg.Server.Addr))

	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	var db *pg.DB
	if err := retry.Do(ctx, func() error {
		var derr error
		db, derr = pg.New(ctx, cfg.DB)
		return derr
	}, retry.ConnectPolicy(l)); err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	health := func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, health, l)

	api := httpapi.NewServer(l, pg.NewMonitorRepo(db), health)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	l.Info("api started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
