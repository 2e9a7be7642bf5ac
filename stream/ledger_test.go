package stream

import (
	"errors"
	"testing"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/types"
	"github.com/xraph/paystream/vesting"
)

func newTestStream(sender, receiver id.AccountID, amount int64) *Stream {
	return &Stream{
		Entity:    types.NewEntity(),
		ID:        id.NewStreamID(),
		Sender:    sender,
		Receiver:  receiver,
		Custody:   id.NewAccountID(),
		StartTime: 0,
		EndTime:   100,
		Amount:    types.USD(amount),
		Withdrawn: types.USD(0),
		Active:    true,
		Schedule:  vesting.Linear(),
	}
}

func TestLedgerAppend(t *testing.T) {
	authority := id.NewAccountID()
	receiver := id.NewAccountID()
	l := NewLedger(authority, 3)

	for i := 0; i < 3; i++ {
		idx, err := l.Append(newTestStream(authority, receiver, 1000))
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
		if idx != uint64(i) {
			t.Errorf("append %d: got index %d", i, idx)
		}
	}
	if l.StreamCount != 3 {
		t.Errorf("StreamCount: got %d, want 3", l.StreamCount)
	}

	if _, err := l.Append(newTestStream(authority, receiver, 1000)); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
	if l.StreamCount != 3 {
		t.Errorf("failed append must not bump StreamCount, got %d", l.StreamCount)
	}
}

func TestLedgerDefaultCapacity(t *testing.T) {
	l := NewLedger(id.NewAccountID(), 0)
	if l.Capacity != DefaultCapacity {
		t.Errorf("got capacity %d, want %d", l.Capacity, DefaultCapacity)
	}
}

func TestLedgerGet(t *testing.T) {
	authority := id.NewAccountID()
	l := NewLedger(authority, 5)
	s := newTestStream(authority, id.NewAccountID(), 1000)
	if _, err := l.Append(s); err != nil {
		t.Fatal(err)
	}

	got, err := l.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.ID.Equal(s.ID) {
		t.Error("get returned the wrong stream")
	}

	if _, err := l.Get(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestLedgerAuthorization(t *testing.T) {
	sender := id.NewAccountID()
	receiver := id.NewAccountID()
	stranger := id.NewAccountID()

	l := NewLedger(sender, 5)
	if _, err := l.Append(newTestStream(sender, receiver, 1000)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"SenderOK", func() error { _, err := l.RequireSender(0, sender); return err }, nil},
		{"SenderMismatch", func() error { _, err := l.RequireSender(0, receiver); return err }, ErrUnauthorized},
		{"ReceiverOK", func() error { _, err := l.RequireReceiver(0, receiver); return err }, nil},
		{"ReceiverMismatch", func() error { _, err := l.RequireReceiver(0, stranger); return err }, ErrUnauthorized},
		{"SenderBadIndex", func() error { _, err := l.RequireSender(9, sender); return err }, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLedgerRequireActive(t *testing.T) {
	authority := id.NewAccountID()
	l := NewLedger(authority, 5)
	if _, err := l.Append(newTestStream(authority, id.NewAccountID(), 1000)); err != nil {
		t.Fatal(err)
	}

	if _, err := l.RequireActive(0); err != nil {
		t.Fatalf("active stream should pass: %v", err)
	}

	if err := l.Commit(0, func(s *Stream) error {
		s.Active = false
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := l.RequireActive(0); !errors.Is(err, ErrStreamInactive) {
		t.Errorf("expected ErrStreamInactive, got %v", err)
	}
}

func TestLedgerCommitAtomic(t *testing.T) {
	authority := id.NewAccountID()
	l := NewLedger(authority, 5)
	if _, err := l.Append(newTestStream(authority, id.NewAccountID(), 1000)); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := l.Commit(0, func(s *Stream) error {
		s.Withdrawn = types.USD(500)
		s.Active = false
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}

	s, _ := l.Get(0)
	if !s.Withdrawn.IsZero() || !s.Active {
		t.Error("failed commit must leave the record untouched")
	}
}

func TestStreamWithdrawable(t *testing.T) {
	s := newTestStream(id.NewAccountID(), id.NewAccountID(), 1000)

	w, err := s.Withdrawable(50)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Equal(types.USD(500)) {
		t.Errorf("got %v, want $5.00", w)
	}

	s.Withdrawn = types.USD(500)
	w, err = s.Withdrawable(50)
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsZero() {
		t.Errorf("got %v, want zero", w)
	}

	// Withdrawn past vested is a broken invariant, not a negative result.
	s.Withdrawn = types.USD(600)
	if _, err := s.Withdrawable(50); !errors.Is(err, ErrAmountUnderflow) {
		t.Errorf("expected ErrAmountUnderflow, got %v", err)
	}
}

func TestStreamMatured(t *testing.T) {
	s := newTestStream(id.NewAccountID(), id.NewAccountID(), 1000)

	if s.Matured(99) {
		t.Error("stream should not be matured before end")
	}
	if !s.Matured(100) {
		t.Error("stream should be matured at end")
	}
	if !s.Matured(500) {
		t.Error("stream should be matured past end")
	}
}
