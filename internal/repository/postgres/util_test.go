package postgres

import (
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
)

func TestMapErr(t *testing.T) {
	require.NoError(t, mapErr("op", nil))

	assert.ErrorIs(t, mapErr("op", pgx.ErrNoRows), monitor.ErrNotFound)

	// transport failure counts as the store being unavailable
	netErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	assert.ErrorIs(t, mapErr("op", netErr), monitor.ErrUnavailable)

	// a server-side error means the store answered
	pgErr := &pgconn.PgError{Code: "42703", Message: "column does not exist"}
	err := mapErr("op", pgErr)
	assert.NotErrorIs(t, err, monitor.ErrUnavailable)
	assert.NotErrorIs(t, err, monitor.ErrNotFound)
}
