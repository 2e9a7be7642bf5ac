package store

import (
	"context"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
)

// Store is the unified storage interface for all Paystream entities.
// Instead of embedding the sub-interfaces, we explicitly declare all
// methods to avoid naming conflicts.
type Store interface {
	// Ledger methods
	CreateLedger(ctx context.Context, l *stream.Ledger) error
	GetLedger(ctx context.Context, authority id.AccountID) (*stream.Ledger, error)

	// Stream methods. AppendStream persists a stream the domain ledger
	// already admitted (capacity and index are the ledger's business);
	// UpdateStream overwrites one record atomically.
	AppendStream(ctx context.Context, authority id.AccountID, s *stream.Stream) error
	UpdateStream(ctx context.Context, authority id.AccountID, s *stream.Stream) error
	ListStreams(ctx context.Context, authority id.AccountID, opts stream.ListOpts) ([]*stream.Stream, error)

	// Transfer journal methods
	RecordTransfer(ctx context.Context, t *treasury.Transfer) error
	ListTransfers(ctx context.Context, streamID id.StreamID) ([]*treasury.Transfer, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
