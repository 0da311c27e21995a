package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andres10976/cve-monitor/internal/model"
)

// dbtx is the subset of *pgxpool.Pool the state store needs.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStateStore keeps the monitor state in the single-row
// monitor_state table.
type PostgresStateStore struct {
	db dbtx
}

func NewPostgresStateStore(db dbtx) *PostgresStateStore {
	return &PostgresStateStore{db: db}
}

// Load returns the persisted state. A missing row or any query error yields
// the zero state; startup must never block on state.
func (r *PostgresStateStore) Load(ctx context.Context) model.MonitorState {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT pull_count FROM monitor_state WHERE id = 1`,
	).Scan(&n)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		slog.Info("no monitor state row, starting fresh")
		return model.MonitorState{}
	case err != nil:
		slog.Error("failed to load monitor state, starting fresh", "error", err)
		return model.MonitorState{}
	case n < 0:
		slog.Warn("negative pull_count in monitor state, starting fresh", "pull_count", n)
		return model.MonitorState{}
	}
	slog.Info("loaded state", "pull_count", n)
	return model.MonitorState{PullCount: uint64(n)}
}

// Save upserts the state row in a single statement.
func (r *PostgresStateStore) Save(ctx context.Context, state model.MonitorState) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO monitor_state (id, pull_count, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET
			pull_count = EXCLUDED.pull_count,
			updated_at = EXCLUDED.updated_at`,
		int64(state.PullCount),
	)
	if err != nil {
		return fmt.Errorf("save monitor state: %w", err)
	}
	slog.Info("saved state", "pull_count", state.PullCount)
	return nil
}
