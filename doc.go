// Package paystream provides a custodial payment-streaming engine for Go
// applications.
//
// Paystream is designed as a library, not a service. Import it directly
// into your Go application. A sender commits a fixed sum that vests
// linearly (or via cliff/stepwise schedules) to a receiver over a time
// window; the receiver withdraws accrued funds at any point, and the
// sender can cancel early, splitting custody into a vested payout and an
// unvested refund. It provides:
//
//   - Exact integer vesting arithmetic with 128-bit intermediates
//   - Per-sender ledgers with fixed stream capacity and stable indexes
//   - Pluggable fund custody via the treasury.Treasury interface
//   - A transfer journal recording every custody movement
//   - Lifecycle hooks through the plugin registry
//   - Memory, Postgres, SQLite and MongoDB persistence backends
//
// # Quick Start
//
// Create an engine with your preferred store and a treasury:
//
//	import (
//	    "github.com/xraph/paystream"
//	    "github.com/xraph/paystream/store/memory"
//	    "github.com/xraph/paystream/treasury"
//	)
//
//	funds := treasury.NewMemory("usd")
//	eng := paystream.New(memory.New(), funds)
//
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// A Ledger is a per-sender collection of streams with a fixed capacity.
// Each Stream carries an immutable payment contract (sender, receiver,
// window, amount, schedule) plus its mutable state (withdrawn, active).
// Vested value is a pure function of the contract and the clock; the
// engine never stores a derived balance.
//
// All amounts are minor-unit integers. Vesting computations floor, so the
// receiver can never withdraw more than has mathematically accrued, and
// cancel refunds round in the sender's favor by at most one minor unit
// until maturity.
package paystream
