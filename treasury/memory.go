package treasury

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/types"
)

// Memory is an in-memory Treasury for tests and single-process use.
// Accounts come into existence on first credit; debits from unknown or
// underfunded accounts fail without moving anything.
type Memory struct {
	mu       sync.Mutex
	currency string
	balances map[string]int64
}

var _ Treasury = (*Memory)(nil)

// NewMemory creates an empty in-memory treasury denominated in the given
// currency.
func NewMemory(currency string) *Memory {
	return &Memory{
		currency: currency,
		balances: make(map[string]int64),
	}
}

// Credit adds funds to an account, creating it if needed. Test setup
// helper; real deployments fund accounts out of band.
func (m *Memory) Credit(account id.AccountID, amount types.Money) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account.String()] += amount.Amount
}

// Transfer implements Treasury.
func (m *Memory) Transfer(_ context.Context, from, to id.AccountID, amount types.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[from.String()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, from)
	}
	if balance < amount.Amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, amount.Amount)
	}

	m.balances[from.String()] = balance - amount.Amount
	m.balances[to.String()] += amount.Amount
	return nil
}

// Balance implements Treasury. Unknown accounts report a zero balance.
func (m *Memory) Balance(_ context.Context, account id.AccountID) (types.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.Money{Amount: m.balances[account.String()], Currency: m.currency}, nil
}
