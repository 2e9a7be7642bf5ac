package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/paystream"
	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/types"
)

func newLedgerWithStreams(t *testing.T, s *Store, n int) (id.AccountID, *stream.Ledger) {
	t.Helper()
	ctx := context.Background()

	authority := id.NewAccountID()
	l := stream.NewLedger(authority, 10)
	if err := s.CreateLedger(ctx, l); err != nil {
		t.Fatalf("CreateLedger: %v", err)
	}

	for i := 0; i < n; i++ {
		st := &stream.Stream{
			Entity:    types.NewEntity(),
			ID:        id.NewStreamID(),
			Sender:    authority,
			Receiver:  id.NewAccountID(),
			Custody:   id.NewAccountID(),
			StartTime: 1000,
			EndTime:   2000,
			Amount:    types.USD(100),
			Withdrawn: types.Zero("usd"),
			Active:    true,
		}
		if _, err := l.Append(st); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := s.AppendStream(ctx, authority, st); err != nil {
			t.Fatalf("AppendStream: %v", err)
		}
	}
	return authority, l
}

func TestCreateLedgerDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()

	authority := id.NewAccountID()
	if err := s.CreateLedger(ctx, stream.NewLedger(authority, 5)); err != nil {
		t.Fatal(err)
	}
	err := s.CreateLedger(ctx, stream.NewLedger(authority, 5))
	if !errors.Is(err, paystream.ErrLedgerExists) {
		t.Fatalf("err = %v, want ErrLedgerExists", err)
	}
}

func TestGetLedgerIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	authority, _ := newLedgerWithStreams(t, s, 2)

	first, err := s.GetLedger(ctx, authority)
	if err != nil {
		t.Fatal(err)
	}

	// Mutating a loaded copy must not leak into stored state.
	first.Streams[0].Active = false
	first.Streams[0].Withdrawn = types.USD(99)

	second, err := s.GetLedger(ctx, authority)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Streams[0].Active || second.Streams[0].Withdrawn.Amount != 0 {
		t.Error("stored ledger was mutated through a loaded copy")
	}
}

func TestGetLedgerNotFound(t *testing.T) {
	s := New()
	_, err := s.GetLedger(context.Background(), id.NewAccountID())
	if !errors.Is(err, paystream.ErrLedgerNotFound) {
		t.Fatalf("err = %v, want ErrLedgerNotFound", err)
	}
}

func TestUpdateStream(t *testing.T) {
	s := New()
	ctx := context.Background()
	authority, l := newLedgerWithStreams(t, s, 1)

	st := *l.Streams[0]
	st.Withdrawn = types.USD(40)
	st.Active = false
	if err := s.UpdateStream(ctx, authority, &st); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetLedger(ctx, authority)
	if err != nil {
		t.Fatal(err)
	}
	if got.Streams[0].Withdrawn.Amount != 40 || got.Streams[0].Active {
		t.Errorf("update not persisted: %+v", got.Streams[0])
	}

	t.Run("MissingIndex", func(t *testing.T) {
		phantom := st
		phantom.Index = 42
		err := s.UpdateStream(ctx, authority, &phantom)
		if !errors.Is(err, paystream.ErrStreamNotFound) {
			t.Fatalf("err = %v, want ErrStreamNotFound", err)
		}
	})
}

func TestListStreamsFiltering(t *testing.T) {
	s := New()
	ctx := context.Background()
	authority, l := newLedgerWithStreams(t, s, 5)

	// Deactivate streams 1 and 3.
	for _, i := range []int{1, 3} {
		st := *l.Streams[i]
		st.Active = false
		if err := s.UpdateStream(ctx, authority, &st); err != nil {
			t.Fatal(err)
		}
	}

	active, err := s.ListStreams(ctx, authority, stream.ListOpts{ActiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 3 {
		t.Fatalf("active = %d, want 3", len(active))
	}

	page, err := s.ListStreams(ctx, authority, stream.ListOpts{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Index != 2 || page[1].Index != 3 {
		t.Fatalf("page = %+v, want indexes 2 and 3", page)
	}

	past, err := s.ListStreams(ctx, authority, stream.ListOpts{Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(past) != 0 {
		t.Fatalf("offset past end returned %d records", len(past))
	}
}
