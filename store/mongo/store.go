package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	paystream "github.com/xraph/paystream"
	"github.com/xraph/paystream/id"
	paystore "github.com/xraph/paystream/store"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
)

// Collection name constants.
const (
	colLedgers   = "paystream_ledgers"
	colStreams   = "paystream_streams"
	colTransfers = "paystream_transfers"
)

// compile-time interface check
var _ paystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all paystream collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("paystream/mongo: migrate %s indexes: %w", col, err)
		}
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
	var existing ledgerModel
	err := s.mdb.NewFind(&existing).
		Filter(bson.M{"authority": l.Authority.String()}).
		Scan(ctx)
	if err == nil {
		return paystream.ErrLedgerExists
	}
	if !isNoDocuments(err) {
		return fmt.Errorf("paystream/mongo: check ledger: %w", err)
	}

	m := toLedgerModel(l)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paystream/mongo: create ledger: %w", err)
	}
	return nil
}

func (s *Store) GetLedger(ctx context.Context, authority id.AccountID) (*stream.Ledger, error) {
	var m ledgerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"authority": authority.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paystream.ErrLedgerNotFound
		}
		return nil, fmt.Errorf("paystream/mongo: get ledger: %w", err)
	}

	l, err := fromLedgerModel(&m)
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
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paystream/mongo: append stream: %w", err)
	}

	// Keep the ledger's running counter in step with its documents.
	_, err := s.mdb.Collection(colLedgers).UpdateOne(ctx,
		bson.M{"authority": authority.String()},
		bson.M{
			"$inc": bson.M{"stream_count": 1},
			"$set": bson.M{"updated_at": st.UpdatedAt},
		},
	)
	if err != nil {
		return fmt.Errorf("paystream/mongo: bump stream count: %w", err)
	}
	return nil
}

func (s *Store) UpdateStream(ctx context.Context, authority id.AccountID, st *stream.Stream) error {
	m := toStreamModel(authority, st)

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paystream/mongo: update stream: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paystream.ErrStreamNotFound
	}
	return nil
}

func (s *Store) ListStreams(ctx context.Context, authority id.AccountID, opts stream.ListOpts) ([]*stream.Stream, error) {
	var models []streamModel

	filter := bson.M{"authority": authority.String()}
	if opts.ActiveOnly {
		filter["is_active"] = true
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "stream_index", Value: 1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paystream/mongo: list streams: %w", err)
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
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paystream/mongo: record transfer: %w", err)
	}
	return nil
}

func (s *Store) ListTransfers(ctx context.Context, streamID id.StreamID) ([]*treasury.Transfer, error) {
	var models []transferModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"stream_id": streamID.String()}).
		Sort(bson.D{{Key: "executed_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("paystream/mongo: list transfers: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all paystream collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colLedgers: {
			{
				Keys:    bson.D{{Key: "authority", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colStreams: {
			{
				Keys:    bson.D{{Key: "authority", Value: 1}, {Key: "stream_index", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "ledger_id", Value: 1}}},
			{Keys: bson.D{{Key: "authority", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		colTransfers: {
			{Keys: bson.D{{Key: "stream_id", Value: 1}, {Key: "executed_at", Value: 1}}},
		},
	}
}
