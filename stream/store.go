package stream

import (
	"context"

	"github.com/xraph/paystream/id"
)

// Store is the persistence slice for ledgers and their streams.
// Implementations must keep a ledger's streams in index order and must
// persist UpdateStream atomically per record.
type Store interface {
	CreateLedger(ctx context.Context, l *Ledger) error
	GetLedger(ctx context.Context, authority id.AccountID) (*Ledger, error)
	AppendStream(ctx context.Context, authority id.AccountID, s *Stream) error
	UpdateStream(ctx context.Context, authority id.AccountID, s *Stream) error
	ListStreams(ctx context.Context, authority id.AccountID, opts ListOpts) ([]*Stream, error)
}

// ListOpts filters and pages ListStreams results.
type ListOpts struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
