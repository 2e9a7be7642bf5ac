package treasury

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/types"
)

func TestMemoryTransfer(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("usd")

	alice := id.NewAccountID()
	bob := id.NewAccountID()
	m.Credit(alice, types.USD(1000))

	if err := m.Transfer(ctx, alice, bob, types.USD(400)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	aliceBal, _ := m.Balance(ctx, alice)
	bobBal, _ := m.Balance(ctx, bob)
	if !aliceBal.Equal(types.USD(600)) {
		t.Errorf("alice: got %v, want $6.00", aliceBal)
	}
	if !bobBal.Equal(types.USD(400)) {
		t.Errorf("bob: got %v, want $4.00", bobBal)
	}
}

func TestMemoryTransferFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("usd")

	alice := id.NewAccountID()
	bob := id.NewAccountID()
	m.Credit(alice, types.USD(100))

	tests := []struct {
		name    string
		from    id.AccountID
		amount  types.Money
		wantErr error
	}{
		{"Insufficient", alice, types.USD(101), ErrInsufficientFunds},
		{"UnknownAccount", id.NewAccountID(), types.USD(1), ErrUnknownAccount},
		{"ZeroAmount", alice, types.USD(0), ErrInvalidAmount},
		{"NegativeAmount", alice, types.USD(-5), ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Transfer(ctx, tt.from, bob, tt.amount); !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Nothing moved on any failure.
	aliceBal, _ := m.Balance(ctx, alice)
	bobBal, _ := m.Balance(ctx, bob)
	if !aliceBal.Equal(types.USD(100)) {
		t.Errorf("alice: got %v, want $1.00", aliceBal)
	}
	if !bobBal.IsZero() {
		t.Errorf("bob: got %v, want zero", bobBal)
	}
}

func TestMemoryBalanceUnknown(t *testing.T) {
	m := NewMemory("usd")
	bal, err := m.Balance(context.Background(), id.NewAccountID())
	if err != nil {
		t.Fatal(err)
	}
	if !bal.IsZero() {
		t.Errorf("unknown account balance: got %v, want zero", bal)
	}
}
