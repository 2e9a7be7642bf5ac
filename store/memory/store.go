package memory

import (
	"context"
	"sync"

	"github.com/xraph/paystream"
	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
)

// Store is an in-memory store for tests and single-process use. All
// reads and writes deep-copy records so callers can mutate their copies
// freely without touching stored state until they write back.
type Store struct {
	mu sync.RWMutex

	// Ledgers keyed by authority account ID
	ledgers map[string]*stream.Ledger

	// Transfer journal keyed by stream ID
	transfers map[string][]*treasury.Transfer
}

var _ paystream.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		ledgers:   make(map[string]*stream.Ledger),
		transfers: make(map[string][]*treasury.Transfer),
	}
}

// ==================== Ledger Store ====================

func (s *Store) CreateLedger(_ context.Context, l *stream.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := l.Authority.String()
	if _, exists := s.ledgers[key]; exists {
		return paystream.ErrLedgerExists
	}
	s.ledgers[key] = cloneLedger(l)
	return nil
}

func (s *Store) GetLedger(_ context.Context, authority id.AccountID) (*stream.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[authority.String()]
	if !ok {
		return nil, paystream.ErrLedgerNotFound
	}
	return cloneLedger(l), nil
}

// ==================== Stream Store ====================

func (s *Store) AppendStream(_ context.Context, authority id.AccountID, st *stream.Stream) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[authority.String()]
	if !ok {
		return paystream.ErrLedgerNotFound
	}

	cp := *st
	l.Streams = append(l.Streams, &cp)
	l.StreamCount++
	return nil
}

func (s *Store) UpdateStream(_ context.Context, authority id.AccountID, st *stream.Stream) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[authority.String()]
	if !ok {
		return paystream.ErrLedgerNotFound
	}
	if st.Index >= uint64(len(l.Streams)) {
		return paystream.ErrStreamNotFound
	}

	cp := *st
	l.Streams[st.Index] = &cp
	return nil
}

func (s *Store) ListStreams(_ context.Context, authority id.AccountID, opts stream.ListOpts) ([]*stream.Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.ledgers[authority.String()]
	if !ok {
		return nil, paystream.ErrLedgerNotFound
	}

	result := make([]*stream.Stream, 0, len(l.Streams))
	for _, st := range l.Streams {
		if opts.ActiveOnly && !st.Active {
			continue
		}
		cp := *st
		result = append(result, &cp)
	}

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// ==================== Transfer Store ====================

func (s *Store) RecordTransfer(_ context.Context, t *treasury.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	key := t.Stream.String()
	s.transfers[key] = append(s.transfers[key], &cp)
	return nil
}

func (s *Store) ListTransfers(_ context.Context, streamID id.StreamID) ([]*treasury.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.transfers[streamID.String()]
	result := make([]*treasury.Transfer, len(records))
	for i, t := range records {
		cp := *t
		result[i] = &cp
	}
	return result, nil
}

// ==================== Core ====================

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// cloneLedger deep-copies a ledger and its streams.
func cloneLedger(l *stream.Ledger) *stream.Ledger {
	cp := *l
	cp.Streams = make([]*stream.Stream, len(l.Streams))
	for i, st := range l.Streams {
		sc := *st
		cp.Streams[i] = &sc
	}
	return &cp
}
