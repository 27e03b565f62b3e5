package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
)

var _ monitor.Repo = (*MonitorRepoImpl)(nil)

type MonitorRepoImpl struct {
	db *DB
}

func NewMonitorRepo(db *DB) *MonitorRepoImpl { return &MonitorRepoImpl{db: db} }

const (
	qInsert = `
INSERT INTO monitors (id, owner_id, name, url, interval_sec, status)
VALUES ($1, $2, $3, $4, $5, 'pending')
RETURNING created_at;
`

	qGetByID = `
SELECT id, owner_id, name, url, COALESCE(interval_sec, 60), status, last_checked, created_at
FROM monitors
WHERE id = $1;
`

	qListByOwner = `
SELECT id, owner_id, name, url, COALESCE(interval_sec, 60), status, last_checked, created_at
FROM monitors
WHERE owner_id = $1
ORDER BY created_at DESC;
`

	qListAll = `
SELECT id, owner_id, name, url, COALESCE(interval_sec, 60), status, last_checked, created_at
FROM monitors
ORDER BY id;
`

	// The last_checked guard keeps the timestamp monotonically
	// non-decreasing: a late write from an older cycle affects 0 rows.
	qUpdateStatus = `
UPDATE monitors
SET status = $2, last_checked = $3
WHERE id = $1 AND (last_checked IS NULL OR last_checked <= $3);
`

	qExists = `SELECT 1 FROM monitors WHERE id = $1;`

	qDelete = `DELETE FROM monitors WHERE id = $1 AND owner_id = $2;`
)

// scanFull normalizes store-native timestamps at the boundary: a NULL
// last_checked becomes the zero time ("never"), everything else UTC.
func scanFull(row pgx.Row, m *monitor.Monitor) error {
	var (
		intervalSec int
		lastChecked *time.Time
	)
	if err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&m.Name,
		&m.URL,
		&intervalSec,
		&m.Status,
		&lastChecked,
		&m.CreatedAt,
	); err != nil {
		return err
	}
	m.Interval = time.Duration(intervalSec) * time.Second
	if lastChecked != nil {
		m.LastChecked = lastChecked.UTC()
	} else {
		m.LastChecked = time.Time{}
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return nil
}

func (r *MonitorRepoImpl) Create(ctx context.Context, m *monitor.Monitor) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	intervalSec := int(m.Interval / time.Second)
	row := r.db.Pool.QueryRow(ctx, qInsert, m.ID, m.OwnerID, m.Name, m.URL, intervalSec)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return mapErr("insert monitor", err)
	}
	m.Status = monitor.StatusPending
	m.CreatedAt = m.CreatedAt.UTC()
	return nil
}

func (r *MonitorRepoImpl) GetByID(ctx context.Context, id string) (*monitor.Monitor, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var m monitor.Monitor
	if err := scanFull(r.db.Pool.QueryRow(ctx, qGetByID, id), &m); err != nil {
		return nil, mapErr("get monitor", err)
	}
	return &m, nil
}

func (r *MonitorRepoImpl) ListByOwner(ctx context.Context, ownerID string) ([]*monitor.Monitor, error) {
	return r.list(ctx, qListByOwner, ownerID)
}

func (r *MonitorRepoImpl) ListAll(ctx context.Context) ([]*monitor.Monitor, error) {
	return r.list(ctx, qListAll)
}

func (r *MonitorRepoImpl) list(ctx context.Context, query string, args ...any) ([]*monitor.Monitor, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr("query monitors", err)
	}
	defer rows.Close()

	var out []*monitor.Monitor
	for rows.Next() {
		var m monitor.Monitor
		if err := scanFull(rows, &m); err != nil {
			return nil, mapErr("scan monitor", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("rows", err)
	}
	return out, nil
}

func (r *MonitorRepoImpl) UpdateStatus(ctx context.Context, id string, status monitor.Status, checkedAt time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qUpdateStatus, id, status, checkedAt.UTC())
	if err != nil {
		return mapErr("update status", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	// 0 rows is either a vanished monitor or a stale write held back
	// by the monotonicity guard; only the former is reported.
	rows, err := r.db.Pool.Query(ctx, qExists, id)
	if err != nil {
		return mapErr("update status", err)
	}
	if !oneRow(rows) {
		return monitor.ErrNotFound
	}
	return nil
}

func (r *MonitorRepoImpl) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qDelete, id, ownerID)
	if err != nil {
		return mapErr("delete monitor", err)
	}
	if cmd.RowsAffected() == 0 {
		return monitor.ErrNotFound
	}
	return nil
}
