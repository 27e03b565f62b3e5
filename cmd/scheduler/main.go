package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/sitepulse/sitepulse/internal/config/scheduler"
	"github.com/sitepulse/sitepulse/internal/obs"
	"github.com/sitepulse/sitepulse/internal/obs/retry"
	"github.com/sitepulse/sitepulse/internal/prober"
	kafkarepo "github.com/sitepulse/sitepulse/internal/repository/kafka"
	pg "github.com/sitepulse/sitepulse/internal/repository/postgres"
	"github.com/sitepulse/sitepulse/internal/scheduler"
	"github.com/sitepulse/sitepulse/internal/scheduler/repo"
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
	l.Info("starting scheduler",
		zap.Duration("tick", cfg.Sched.Tick),
		zap.Duration("store_retry_wait", cfg.Sched.StoreRetryWait),
		zap.String("metrics_addr", cfg.Sched.MetricsAddr),
		zap.Bool("events_enabled", cfg.Kafka.Enabled),
	)

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

	var events scheduler.Events
	if cfg.Kafka.Enabled {
		if err := kafkarepo.EnsureTopic(ctx, cfg.Kafka.Brokers, kafkarepo.TopicSpec{Name: cfg.Kafka.Topic}, l); err != nil {
			l.Warn("ensure topic", zap.Error(err))
		}
		prod := kafkarepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
		defer func() { _ = prod.Close() }()
		events = repo.Events{P: kafkarepo.NewStatusEvents(prod, l)}
	}

	ms := obs.BootstrapMetricsServer(cfg.Sched.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	uc := scheduler.NewUC(
		l,
		repo.MonitorStore{R: pg.NewMonitorRepo(db)},
		prober.New(cfg.HTTP),
		events,
	)
	uc.MaxConcurrent = cfg.Sched.MaxConcurrent
	runner := scheduler.New(l, uc, &cfg.Sched)

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	l.Info("scheduler started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
