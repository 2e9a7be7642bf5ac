package stream

import (
	"fmt"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/types"
)

// DefaultCapacity is the stream bound applied to ledgers created without
// an explicit capacity.
const DefaultCapacity = 20

// Ledger is the per-sender, insertion-ordered collection of streams.
// Indexes are stable for the life of the ledger: streams are never
// removed or compacted, they only deactivate. Capacity is fixed at
// creation and never resized.
//
// A Ledger is not safe for concurrent mutation; the surrounding system
// serializes operations per ledger.
type Ledger struct {
	types.Entity
	ID        id.LedgerID  `json:"id"`
	Authority id.AccountID `json:"authority"`
	Capacity  int          `json:"capacity"`

	// StreamCount counts appends over the ledger's lifetime. It equals
	// len(Streams) because streams are never deleted, but it is stored
	// as its own running counter rather than derived.
	StreamCount uint64 `json:"stream_count"`

	Streams []*Stream `json:"streams"`
}

// NewLedger creates an empty ledger owned by authority with the given
// capacity. A non-positive capacity falls back to DefaultCapacity.
func NewLedger(authority id.AccountID, capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		Entity:    types.NewEntity(),
		ID:        id.NewLedgerID(),
		Authority: authority,
		Capacity:  capacity,
		Streams:   make([]*Stream, 0, capacity),
	}
}

// Append adds a stream to the ledger, assigns it the next stable index,
// and bumps the running counter. Fails with ErrCapacityExceeded when the
// ledger is full.
func (l *Ledger) Append(s *Stream) (uint64, error) {
	if len(l.Streams) >= l.Capacity {
		return 0, fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, l.Capacity)
	}

	index := uint64(len(l.Streams))
	s.Index = index
	s.Ledger = l.ID
	l.Streams = append(l.Streams, s)
	l.StreamCount++
	return index, nil
}

// Get returns the stream at index, or ErrIndexOutOfRange if no such
// record exists.
func (l *Ledger) Get(index uint64) (*Stream, error) {
	if index >= uint64(len(l.Streams)) {
		return nil, fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, index, len(l.Streams))
	}
	return l.Streams[index], nil
}

// RequireSender returns the stream at index if caller is its sender,
// ErrUnauthorized otherwise.
func (l *Ledger) RequireSender(index uint64, caller id.AccountID) (*Stream, error) {
	s, err := l.Get(index)
	if err != nil {
		return nil, err
	}
	if !s.Sender.Equal(caller) {
		return nil, fmt.Errorf("%w: caller is not the sender", ErrUnauthorized)
	}
	return s, nil
}

// RequireReceiver returns the stream at index if caller is its receiver,
// ErrUnauthorized otherwise.
func (l *Ledger) RequireReceiver(index uint64, caller id.AccountID) (*Stream, error) {
	s, err := l.Get(index)
	if err != nil {
		return nil, err
	}
	if !s.Receiver.Equal(caller) {
		return nil, fmt.Errorf("%w: caller is not the receiver", ErrUnauthorized)
	}
	return s, nil
}

// RequireActive returns the stream at index if it is still active,
// ErrStreamInactive otherwise.
func (l *Ledger) RequireActive(index uint64) (*Stream, error) {
	s, err := l.Get(index)
	if err != nil {
		return nil, err
	}
	if !s.Active {
		return nil, ErrStreamInactive
	}
	return s, nil
}

// Commit applies a single atomic mutation to the stream at index. The
// mutator runs against a copy; the copy replaces the stored record only
// if the mutator succeeds, so a failed mutation leaves the ledger
// exactly as it was. This is the unit of consistency the engine relies
// on.
func (l *Ledger) Commit(index uint64, mutate func(*Stream) error) error {
	s, err := l.Get(index)
	if err != nil {
		return err
	}

	scratch := *s
	if err := mutate(&scratch); err != nil {
		return err
	}
	scratch.Touch()
	*s = scratch
	return nil
}

// ActiveCount returns the number of streams still active. Unlike
// StreamCount this is a live count.
func (l *Ledger) ActiveCount() int {
	n := 0
	for _, s := range l.Streams {
		if s.Active {
			n++
		}
	}
	return n
}
