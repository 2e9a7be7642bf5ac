// Package treasury defines the custodial funds-movement collaborator.
//
// The engine treats the treasury as a black box: one transfer primitive
// that either moves the full amount between two accounts or fails and
// moves nothing. The package also defines the Transfer journal record
// the engine writes for every successful movement.
package treasury

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/types"
)

// Sentinel errors surfaced by treasury implementations.
var (
	ErrInsufficientFunds = errors.New("treasury: insufficient funds")
	ErrUnknownAccount    = errors.New("treasury: unknown account")
	ErrInvalidAmount     = errors.New("treasury: amount must be positive")
)

// Treasury moves funds between accounts. Transfer is atomic: on error no
// value moved. Implementations must reject non-positive amounts with
// ErrInvalidAmount.
type Treasury interface {
	Transfer(ctx context.Context, from, to id.AccountID, amount types.Money) error
	Balance(ctx context.Context, account id.AccountID) (types.Money, error)
}

// Kind classifies a recorded transfer by its role in a stream's
// lifecycle.
type Kind string

// Transfer kinds.
const (
	KindFund       Kind = "fund"       // sender → custody at open
	KindWithdrawal Kind = "withdrawal" // custody → receiver via withdraw
	KindPayout     Kind = "payout"     // custody → receiver via cancel
	KindRefund     Kind = "refund"     // custody → sender via cancel
)

// Transfer is the journal record of one successful funds movement.
type Transfer struct {
	ID       id.TransferID `json:"id"`
	Stream   id.StreamID   `json:"stream_id"`
	From     id.AccountID  `json:"from"`
	To       id.AccountID  `json:"to"`
	Amount   types.Money   `json:"amount"`
	Kind     Kind          `json:"kind"`
	Executed time.Time     `json:"executed_at"`
}

// Store is the persistence slice for the transfer journal.
type Store interface {
	RecordTransfer(ctx context.Context, t *Transfer) error
	ListTransfers(ctx context.Context, streamID id.StreamID) ([]*Transfer, error)
}
