package monitor

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the monitor does not exist (possibly deleted
	// concurrently by the CRUD API).
	ErrNotFound = errors.New("monitor not found")
	// ErrUnavailable means the store could not be reached at all.
	ErrUnavailable = errors.New("store unavailable")
)

type Repo interface {
	Create(ctx context.Context, m *Monitor) error
	GetByID(ctx context.Context, id string) (*Monitor, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Monitor, error)
	ListAll(ctx context.Context) ([]*Monitor, error)
	// UpdateStatus touches status and last_checked only. Writes that
	// would move last_checked backwards are dropped.
	UpdateStatus(ctx context.Context, id string, status Status, checkedAt time.Time) error
	Delete(ctx context.Context, ownerID, id string) error
}
