package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	paystream "github.com/xraph/paystream"
	"github.com/xraph/paystream/id"
	paystore "github.com/xraph/paystream/store"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
)

// compile-time interface check
var _ paystore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("paystream/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("paystream/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Ledger Store ====================

func (s *Store) CreateLedger(ctx context.Context, l *stream.Ledger) error {
	existing := new(ledgerModel)
	err := s.sdb.NewSelect(existing).
		Where("authority = ?", l.Authority.String()).
		Scan(ctx)
	if err == nil {
		return paystream.ErrLedgerExists
	}
	if !isNoRows(err) {
		return err
	}

	m := toLedgerModel(l)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return err
	}
	return nil
}

func (s *Store) GetLedger(ctx context.Context, authority id.AccountID) (*stream.Ledger, error) {
	m := new(ledgerModel)
	err := s.sdb.NewSelect(m).
		Where("authority = ?", authority.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paystream.ErrLedgerNotFound
		}
		return nil, err
	}

	l, err := fromLedgerModel(m)
	if err != nil {
		return nil, err
	}

	streams, err := s.ListStreams(ctx, authority, stream.ListOpts{})
	if err != nil {
		return nil, err
	}
	l.Streams = streams
	return l, nil
}

// ==================== Stream Store ====================

func (s *Store) AppendStream(ctx context.Context, authority id.AccountID, st *stream.Stream) error {
	m := toStreamModel(authority, st)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return err
	}

	// Keep the ledger's running counter in step with its rows.
	_, err := s.sdb.NewUpdate((*ledgerModel)(nil)).
		Set("stream_count = stream_count + 1").
		Set("updated_at = ?", st.UpdatedAt).
		Where("authority = ?", authority.String()).
		Exec(ctx)
	return err
}

func (s *Store) UpdateStream(ctx context.Context, authority id.AccountID, st *stream.Stream) error {
	m := toStreamModel(authority, st)
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return paystream.ErrStreamNotFound
	}
	return nil
}

func (s *Store) ListStreams(ctx context.Context, authority id.AccountID, opts stream.ListOpts) ([]*stream.Stream, error) {
	var models []streamModel
	q := s.sdb.NewSelect(&models).Where("authority = ?", authority.String())

	if opts.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("stream_index ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	streams := make([]*stream.Stream, 0, len(models))
	for i := range models {
		st, err := fromStreamModel(&models[i])
		if err != nil {
			return nil, err
		}
		streams = append(streams, st)
	}
	return streams, nil
}

// ==================== Transfer Store ====================

func (s *Store) RecordTransfer(ctx context.Context, t *treasury.Transfer) error {
	m := toTransferModel(t)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListTransfers(ctx context.Context, streamID id.StreamID) ([]*treasury.Transfer, error) {
	var models []transferModel
	err := s.sdb.NewSelect(&models).
		Where("stream_id = ?", streamID.String()).
		OrderExpr("executed_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	transfers := make([]*treasury.Transfer, 0, len(models))
	for i := range models {
		t, err := fromTransferModel(&models[i])
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, nil
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
