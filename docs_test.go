package paystream_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/paystream"
	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/store/memory"
	"github.com/xraph/paystream/treasury"
	"github.com/xraph/paystream/types"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// A treasury holds the actual balances; the engine only moves
		// them.
		funds := treasury.NewMemory("usd")

		eng := paystream.New(store, funds,
			paystream.WithLogger(slog.Default()),
			paystream.WithLedgerCapacity(paystream.DefaultCapacity),
		)

		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		// A sender funds their account and initializes a ledger.
		sender := id.NewAccountID()
		receiver := id.NewAccountID()
		funds.Credit(sender, types.USD(10_000))

		if _, err := eng.InitializeLedger(ctx, sender); err != nil {
			t.Fatal(err)
		}

		// Stream $50.00 to the receiver over an hour.
		st, err := eng.OpenStream(ctx, sender, receiver, 3600, types.USD(5000))
		if err != nil {
			t.Fatal(err)
		}

		// Barely anything has vested yet; an early withdrawal is still
		// a valid operation.
		got, err := eng.Withdraw(ctx, sender, receiver, st.Index)
		if err != nil {
			t.Fatal(err)
		}
		if got.Amount > 10 {
			t.Fatalf("withdrew %v from a stream that just opened", got)
		}

		// The sender can walk away at any point.
		if _, _, err := eng.CancelStream(ctx, sender, st.Index); err != nil {
			t.Fatal(err)
		}
	})
}
