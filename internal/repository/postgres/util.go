package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
)

// mapErr translates pgx failures into the domain taxonomy. A PgError
// means the server answered, so only no-rows is special-cased; every
// transport-level failure counts as the store being unavailable.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return monitor.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, monitor.ErrUnavailable, err)
}

func oneRow(rows pgx.Rows) bool {
	defer rows.Close()
	return rows.Next()
}
