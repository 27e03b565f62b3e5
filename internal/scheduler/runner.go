package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/sitepulse/sitepulse/internal/config/scheduler"
)

var (
	mDue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_monitors_due_total", Help: "Monitors selected as due",
	})
	mProbes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_probes_total", Help: "Probes attempted",
	})
	mUp = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_probe_up_total", Help: "Probes classified up",
	})
	mDown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_probe_down_total", Help: "Probes classified down",
	})
	mSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_monitors_skipped_total", Help: "Due monitors skipped (no URL)",
	})
	mErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_errors_total", Help: "Cycle and write errors",
	})
	mCycleDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "scheduler_cycle_duration_seconds", Help: "Cycle duration",
		Buckets: prometheus.DefBuckets,
	})
)

// Runner owns the long-running control loop. After a completed cycle it
// waits Tick before re-evaluating; when the store is unreachable it
// waits StoreRetryWait instead so a misconfigured deployment is not
// hot-spun against. The loop exits only on context cancellation.
type Runner struct {
	Log *zap.Logger
	UC  *Usecase
	Cfg *config.SchedCfg
}

func New(log *zap.Logger, uc *Usecase, cfg *config.SchedCfg) *Runner {
	if cfg.Tick <= 0 {
		cfg.Tick = 5 * time.Second
	}
	if cfg.StoreRetryWait <= 0 {
		cfg.StoreRetryWait = 60 * time.Second
	}
	return &Runner{Log: log, UC: uc, Cfg: cfg}
}

func (r *Runner) Run(ctx context.Context) error {
	for {
		wait := r.cycle(ctx)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// cycle runs one pass and reports how long to idle before the next.
// Any error is absorbed here; the loop itself never terminates over a
// bad cycle.
func (r *Runner) cycle(ctx context.Context) time.Duration {
	start := time.Now()
	stats, err := r.UC.Cycle(ctx)
	mCycleDur.Observe(time.Since(start).Seconds())

	if err != nil {
		mErrors.Inc()
		r.Log.Warn("cycle skipped",
			zap.Error(err),
			zap.Duration("retry_in", r.Cfg.StoreRetryWait),
		)
		return r.Cfg.StoreRetryWait
	}

	mDue.Add(float64(stats.Due))
	mProbes.Add(float64(stats.Probed))
	mUp.Add(float64(stats.Up))
	mDown.Add(float64(stats.Down))
	mSkipped.Add(float64(stats.Skipped))
	mErrors.Add(float64(stats.WriteErrors))

	if stats.Due > 0 {
		r.Log.Debug("cycle complete",
			zap.Int("listed", stats.Listed),
			zap.Int("due", stats.Due),
			zap.Int("up", stats.Up),
			zap.Int("down", stats.Down),
			zap.Int("skipped", stats.Skipped),
			zap.Int("write_errors", stats.WriteErrors),
		)
	}
	return r.Cfg.Tick
}
