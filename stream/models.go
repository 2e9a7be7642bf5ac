// Package stream defines the payment stream and per-sender ledger
// domain types, and the authorization and capacity rules that govern
// them.
package stream

import (
	"errors"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/types"
	"github.com/xraph/paystream/vesting"
)

// Sentinel errors for the stream state machine. The root paystream
// package re-exports these as the module's error taxonomy.
var (
	ErrStreamInactive   = errors.New("paystream: stream is inactive")
	ErrUnauthorized     = errors.New("paystream: caller is not authorized for this stream")
	ErrIndexOutOfRange  = errors.New("paystream: stream index out of range")
	ErrCapacityExceeded = errors.New("paystream: ledger capacity exceeded")
	ErrAmountOverflow   = errors.New("paystream: arithmetic overflow")
	ErrAmountUnderflow  = errors.New("paystream: arithmetic underflow")
)

// Stream is one time-bounded payment commitment from a sender to a
// receiver. Sender, receiver, window, amount, and schedule are fixed at
// open; only Withdrawn and Active mutate, and Active transitions
// true→false exactly once.
type Stream struct {
	types.Entity
	ID       id.StreamID  `json:"id"`
	Ledger   id.LedgerID  `json:"ledger_id"`
	Index    uint64       `json:"index"` // stable zero-based position in the ledger
	Sender   id.AccountID `json:"sender"`
	Receiver id.AccountID `json:"receiver"`

	// Custody is the account holding the committed funds until they are
	// paid out or refunded.
	Custody id.AccountID `json:"custody"`

	// StartTime and EndTime bound the vesting window in unix seconds.
	// EndTime > StartTime always.
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`

	Amount    types.Money      `json:"amount"`
	Withdrawn types.Money      `json:"withdrawn_amount"`
	Active    bool             `json:"is_active"`
	Schedule  vesting.Schedule `json:"schedule"`
}

// VestedAt returns the portion of the committed amount vested at the
// given unix-second instant, according to the stream's schedule.
func (s *Stream) VestedAt(now int64) types.Money {
	v := s.Schedule.VestedAt(s.Amount.Amount, s.StartTime, s.EndTime, now)
	return types.Money{Amount: v, Currency: s.Amount.Currency}
}

// Withdrawable returns the vested-but-unclaimed amount at the given
// instant. A negative result means the withdrawn amount exceeds the
// vested amount, which is a broken invariant and surfaces as
// ErrAmountUnderflow rather than a normal condition.
func (s *Stream) Withdrawable(now int64) (types.Money, error) {
	vested := s.VestedAt(now)
	w, ok := vested.SubtractChecked(s.Withdrawn)
	if !ok {
		return types.Money{}, ErrAmountUnderflow
	}
	return w, nil
}

// Matured reports whether the stream window has fully elapsed.
func (s *Stream) Matured(now int64) bool {
	return now >= s.EndTime
}

// Duration returns the stream window length in seconds.
func (s *Stream) Duration() int64 {
	return s.EndTime - s.StartTime
}
