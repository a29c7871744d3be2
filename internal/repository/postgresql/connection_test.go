package postgresql_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/juju/clock"
	"github.com/kurochkinivan/member_uploader/internal/config"
	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	err := postgresql.Ping(context.Background(), log, ping, clock.WallClock, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPing_ReturnsLastError(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	calls := 0
	ping := func(context.Context) error {
		calls++
		return fmt.Errorf("attempt %d failed", calls)
	}

	err := postgresql.Ping(context.Background(), log, ping, clock.WallClock, 3, time.Millisecond)
	require.EqualError(t, err, "attempt 3 failed")
	assert.Equal(t, 3, calls)
}

func TestPing_StopsOnCancel(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	ctx, cancel := context.WithCancel(context.Background())
	ping := func(context.Context) error {
		cancel()
		return errors.New("connection refused")
	}

	err := postgresql.Ping(ctx, log, ping, clock.WallClock, 10, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConnectionURL(t *testing.T) {
	t.Parallel()

	url := postgresql.ConnectionURL(config.PostgreSQL{
		Host:     "db",
		Port:     "5432",
		Username: "member",
		Password: "p@ss",
		DBName:   "member_uploader",
	})

	assert.Equal(t, "postgres://member:p%40ss@db:5432/member_uploader?sslmode=disable", url)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"concurrent insert", fmt.Errorf("insert: %w", domain.ErrConcurrentInsert), true},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"connection", &pgconn.PgError{Code: "08006"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"not null violation", &pgconn.PgError{Code: "23502"}, false},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, postgresql.IsTransient(tt.err))
		})
	}
}
