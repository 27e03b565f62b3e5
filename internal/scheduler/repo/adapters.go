// Package repo narrows the full monitor repository down to the two
// operations the scheduler loop is allowed to perform. The loop never
// creates, deletes, or rewrites any other monitor field.
package repo

import (
	"context"
	"time"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
	"github.com/sitepulse/sitepulse/internal/repository/kafka"
)

type MonitorStore struct{ R monitor.Repo }

func (a MonitorStore) ListAll(ctx context.Context) ([]*monitor.Monitor, error) {
	return a.R.ListAll(ctx)
}

func (a MonitorStore) UpdateStatus(ctx context.Context, id string, status monitor.Status, checkedAt time.Time) error {
	return a.R.UpdateStatus(ctx, id, status, checkedAt)
}

type Events struct{ P *kafka.StatusEvents }

func (e Events) PublishStatusChanged(ctx context.Context, m *monitor.Monitor, oldStatus, newStatus monitor.Status) error {
	return e.P.PublishStatusChanged(ctx, m, oldStatus, newStatus)
}
