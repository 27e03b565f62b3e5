package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
	"github.com/sitepulse/sitepulse/internal/obs/retry"
)

// StatusEvent is the wire shape for a monitor liveness transition.
type StatusEvent struct {
	MonitorID string    `json:"monitor_id"`
	OwnerID   string    `json:"owner_id"`
	URL       string    `json:"url"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	At        time.Time `json:"at"`
}

type StatusEvents struct {
	p      *Producer
	policy retry.Policy
}

func NewStatusEvents(p *Producer, log *zap.Logger) *StatusEvents {
	return &StatusEvents{p: p, policy: retry.PublishPolicy(log)}
}

func (e *StatusEvents) PublishStatusChanged(ctx context.Context, m *monitor.Monitor, oldStatus, newStatus monitor.Status) error {
	ev := StatusEvent{
		MonitorID: m.ID,
		OwnerID:   m.OwnerID,
		URL:       m.URL,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		At:        time.Now().UTC(),
	}
	return retry.Do(ctx, func() error {
		return e.p.PublishJSON(ctx, []byte(m.ID), ev)
	}, e.policy)
}
