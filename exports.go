package paystream

import (
	"github.com/xraph/paystream/store"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
	"github.com/xraph/paystream/types"
	"github.com/xraph/paystream/vesting"
)

// Re-export common types for convenience so users don't have to import
// the sub-packages directly.

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	USD  = types.USD
	EUR  = types.EUR
	GBP  = types.GBP
	JPY  = types.JPY
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity

// Domain types re-exported from their packages.
type (
	Ledger   = stream.Ledger
	Stream   = stream.Stream
	ListOpts = stream.ListOpts

	Schedule = vesting.Schedule

	Transfer = treasury.Transfer
	Treasury = treasury.Treasury

	// Store is the unified persistence interface implemented by the
	// memory, postgres, sqlite and mongo backends.
	Store = store.Store
)

// Vesting schedule constructors.
var (
	Linear   = vesting.Linear
	Cliff    = vesting.Cliff
	Stepwise = vesting.Stepwise
)

// DefaultCapacity is the stream capacity assigned to new ledgers when
// no override is configured.
const DefaultCapacity = stream.DefaultCapacity
