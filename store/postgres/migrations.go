package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the paystream store.
var Migrations = migrate.NewGroup("paystream")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_paystream_ledgers",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paystream_ledgers (
    id           TEXT PRIMARY KEY,
    authority    TEXT NOT NULL,
    capacity     INT NOT NULL DEFAULT 20,
    stream_count BIGINT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_paystream_ledgers_authority ON paystream_ledgers (authority);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paystream_ledgers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paystream_streams",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paystream_streams (
    id           TEXT PRIMARY KEY,
    ledger_id    TEXT NOT NULL,
    authority    TEXT NOT NULL,
    stream_index BIGINT NOT NULL,
    sender       TEXT NOT NULL,
    receiver     TEXT NOT NULL,
    custody      TEXT NOT NULL,
    start_time   BIGINT NOT NULL,
    end_time     BIGINT NOT NULL,
    amount       BIGINT NOT NULL,
    currency     TEXT NOT NULL DEFAULT 'usd',
    withdrawn    BIGINT NOT NULL DEFAULT 0,
    is_active    BOOLEAN NOT NULL DEFAULT TRUE,
    schedule     JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_paystream_streams_authority_index ON paystream_streams (authority, stream_index);
CREATE INDEX IF NOT EXISTS idx_paystream_streams_ledger ON paystream_streams (ledger_id);
CREATE INDEX IF NOT EXISTS idx_paystream_streams_active ON paystream_streams (authority, is_active);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paystream_streams`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paystream_transfers",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paystream_transfers (
    id           TEXT PRIMARY KEY,
    stream_id    TEXT NOT NULL,
    from_account TEXT NOT NULL,
    to_account   TEXT NOT NULL,
    amount       BIGINT NOT NULL,
    currency     TEXT NOT NULL DEFAULT 'usd',
    kind         TEXT NOT NULL,
    executed_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_paystream_transfers_stream ON paystream_transfers (stream_id, executed_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paystream_transfers`)
				return err
			},
		},
	)
}
