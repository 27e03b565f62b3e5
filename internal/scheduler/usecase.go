package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
	"github.com/sitepulse/sitepulse/internal/prober"
)

// Store is the narrow contact surface with the persistence
// collaborator: enumerate everything, write back status + timestamp.
type Store interface {
	ListAll(ctx context.Context) ([]*monitor.Monitor, error)
	UpdateStatus(ctx context.Context, id string, status monitor.Status, checkedAt time.Time) error
}

type Prober interface {
	Probe(ctx context.Context, url string) prober.Outcome
}

// Events receives status transitions. Optional; nil disables publishing.
type Events interface {
	PublishStatusChanged(ctx context.Context, m *monitor.Monitor, oldStatus, newStatus monitor.Status) error
}

type Stats struct {
	Listed      int
	Due         int
	Probed      int
	Up          int
	Down        int
	Skipped     int
	WriteErrors int
}

type Usecase struct {
	Log           *zap.Logger
	Store         Store
	Prober        Prober
	Events        Events
	Clock         func() time.Time
	MaxConcurrent int
}

func NewUC(log *zap.Logger, store Store, p Prober, events Events) *Usecase {
	return &Usecase{
		Log:           log,
		Store:         store,
		Prober:        p,
		Events:        events,
		Clock:         func() time.Time { return time.Now().UTC() },
		MaxConcurrent: 50,
	}
}

// Cycle runs one full pass: enumerate, select due, probe, write back.
// A store failure on enumeration aborts the cycle with zero writes.
// Everything past that point is handled per monitor and never
// propagates out.
func (u *Usecase) Cycle(ctx context.Context) (Stats, error) {
	tr := otel.Tracer("scheduler.uc")
	ctx, span := tr.Start(ctx, "scheduler.cycle")
	defer span.End()

	monitors, err := u.Store.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return Stats{}, fmt.Errorf("list monitors: %w", err)
	}

	due := SelectDue(monitors, u.Clock())
	stats := Stats{Listed: len(monitors), Due: len(due)}
	span.SetAttributes(
		attribute.Int("cycle.listed", stats.Listed),
		attribute.Int("cycle.due", stats.Due),
	)
	if len(due) == 0 {
		return stats, nil
	}

	limit := u.MaxConcurrent
	if limit <= 0 {
		limit = 50
	}

	var (
		probed, up, down, werrs atomic.Int64
		sem                     = make(chan struct{}, limit)
		wg                      sync.WaitGroup
	)
	// Dispatched probes run detached from the cycle context: on shutdown
	// we stop handing out new work, but anything already in flight runs
	// to its own probe timeout and still gets its status written.
	probeCtx := context.WithoutCancel(ctx)
	for _, m := range due {
		if ctx.Err() != nil {
			// shutting down: stop dispatching, let in-flight probes drain
			break
		}
		if strings.TrimSpace(m.URL) == "" {
			stats.Skipped++
			u.Log.Warn("monitor has no url, skipping",
				zap.String("monitor_id", m.ID),
				zap.String("owner_id", m.OwnerID),
			)
			continue
		}
		m := m
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			u.probeOne(probeCtx, m, &probed, &up, &down, &werrs)
		}()
	}
	wg.Wait()

	stats.Probed = int(probed.Load())
	stats.Up = int(up.Load())
	stats.Down = int(down.Load())
	stats.WriteErrors = int(werrs.Load())
	span.SetAttributes(
		attribute.Int("cycle.probed", stats.Probed),
		attribute.Int("cycle.write_errors", stats.WriteErrors),
	)
	return stats, nil
}

func (u *Usecase) probeOne(ctx context.Context, m *monitor.Monitor, probed, up, down, werrs *atomic.Int64) {
	tr := otel.Tracer("scheduler.uc")
	ctx, span := tr.Start(ctx, "scheduler.probe")
	span.SetAttributes(
		attribute.String("monitor.id", m.ID),
		attribute.String("monitor.url", m.URL),
	)
	defer span.End()

	out := u.Prober.Probe(ctx, m.URL)
	probed.Add(1)

	status := monitor.StatusDown
	if out.Up {
		status = monitor.StatusUp
	}
	checkedAt := u.Clock()

	if err := u.Store.UpdateStatus(ctx, m.ID, status, checkedAt); err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			// deleted mid-cycle, a non-fatal miss
			u.Log.Debug("monitor vanished before write",
				zap.String("monitor_id", m.ID),
				zap.String("url", m.URL),
			)
			return
		}
		werrs.Add(1)
		span.RecordError(err)
		u.Log.Warn("status write failed",
			zap.String("monitor_id", m.ID),
			zap.String("url", m.URL),
			zap.Error(err),
		)
		return
	}

	if out.Up {
		up.Add(1)
	} else {
		down.Add(1)
	}
	u.Log.Debug("probed",
		zap.String("monitor_id", m.ID),
		zap.String("url", m.URL),
		zap.String("status", string(status)),
		zap.Int("code", out.Code),
		zap.Duration("latency", out.Latency),
	)

	if u.Events != nil && m.Status != status {
		if err := u.Events.PublishStatusChanged(ctx, m, m.Status, status); err != nil {
			u.Log.Warn("publish status change",
				zap.String("monitor_id", m.ID),
				zap.Error(err),
			)
		}
	}
}
