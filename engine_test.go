package paystream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/paystream"
	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/store/memory"
	"github.com/xraph/paystream/treasury"
	"github.com/xraph/paystream/types"
	"github.com/xraph/paystream/vesting"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	engine   *paystream.Engine
	funds    *treasury.Memory
	clock    *fakeClock
	sender   id.AccountID
	receiver id.AccountID
}

func newTestEnv(t *testing.T, opts ...paystream.Option) *testEnv {
	t.Helper()

	env := &testEnv{
		funds:    treasury.NewMemory("usd"),
		clock:    &fakeClock{now: time.Unix(1_700_000_000, 0)},
		sender:   id.NewAccountID(),
		receiver: id.NewAccountID(),
	}
	env.funds.Credit(env.sender, types.USD(1_000_000))

	opts = append([]paystream.Option{paystream.WithClock(env.clock)}, opts...)
	env.engine = paystream.New(memory.New(), env.funds, opts...)

	ctx := context.Background()
	if err := env.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = env.engine.Stop() })

	if _, err := env.engine.InitializeLedger(ctx, env.sender); err != nil {
		t.Fatalf("InitializeLedger: %v", err)
	}
	return env
}

func (env *testEnv) balance(t *testing.T, account id.AccountID) int64 {
	t.Helper()
	b, err := env.funds.Balance(context.Background(), account)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	return b.Amount
}

func TestInitializeLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("Duplicate", func(t *testing.T) {
		_, err := env.engine.InitializeLedger(ctx, env.sender)
		if !errors.Is(err, paystream.ErrLedgerExists) {
			t.Fatalf("expected ErrLedgerExists, got %v", err)
		}
	})

	t.Run("CapacityOption", func(t *testing.T) {
		small := newTestEnv(t, paystream.WithLedgerCapacity(2))
		l, err := small.engine.GetLedger(ctx, small.sender)
		if err != nil {
			t.Fatal(err)
		}
		if l.Capacity != 2 {
			t.Fatalf("capacity = %d, want 2", l.Capacity)
		}
	})
}

func TestOpenStreamValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		duration int64
		amount   types.Money
		receiver id.AccountID
		wantErr  error
	}{
		{"ZeroDuration", 0, types.USD(1000), env.receiver, paystream.ErrInvalidDuration},
		{"NegativeDuration", -10, types.USD(1000), env.receiver, paystream.ErrInvalidDuration},
		{"ZeroAmount", 100, types.USD(0), env.receiver, paystream.ErrInvalidAmount},
		{"NegativeAmount", 100, types.USD(-5), env.receiver, paystream.ErrInvalidAmount},
		{"NilReceiver", 100, types.USD(1000), id.ID{}, paystream.ErrInvalidReceiver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.OpenStream(ctx, env.sender, tt.receiver, tt.duration, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("BadSchedule", func(t *testing.T) {
		_, err := env.engine.OpenStreamWithSchedule(ctx, env.sender, env.receiver,
			100, types.USD(1000), vesting.Cliff(200, 100))
		if !errors.Is(err, paystream.ErrInvalidSchedule) {
			t.Fatalf("err = %v, want ErrInvalidSchedule", err)
		}
	})

	t.Run("NoLedger", func(t *testing.T) {
		stranger := id.NewAccountID()
		env.funds.Credit(stranger, types.USD(5000))
		_, err := env.engine.OpenStream(ctx, stranger, env.receiver, 100, types.USD(1000))
		if !errors.Is(err, paystream.ErrLedgerNotFound) {
			t.Fatalf("err = %v, want ErrLedgerNotFound", err)
		}
	})
}

func TestOpenStreamFundsCustody(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	before := env.balance(t, env.sender)

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}

	if got := env.balance(t, env.sender); got != before-1000 {
		t.Errorf("sender balance = %d, want %d", got, before-1000)
	}
	if got := env.balance(t, st.Custody); got != 1000 {
		t.Errorf("custody balance = %d, want 1000", got)
	}
	if st.Index != 0 {
		t.Errorf("index = %d, want 0", st.Index)
	}
	if !st.Active {
		t.Error("stream should be active")
	}
	if st.Duration() != 100 {
		t.Errorf("duration = %d, want 100", st.Duration())
	}

	transfers, err := env.engine.Transfers(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(transfers) != 1 || transfers[0].Kind != treasury.KindFund {
		t.Fatalf("transfers = %+v, want one fund record", transfers)
	}
}

func TestOpenStreamInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poor := id.NewAccountID()
	env.funds.Credit(poor, types.USD(50))
	if _, err := env.engine.InitializeLedger(ctx, poor); err != nil {
		t.Fatal(err)
	}

	_, err := env.engine.OpenStream(ctx, poor, env.receiver, 100, types.USD(1000))
	if !errors.Is(err, paystream.ErrTransferFailed) {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}
	if !errors.Is(err, treasury.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want wrapped ErrInsufficientFunds", err)
	}

	// The failed open must leave no record behind.
	if _, err := env.engine.GetStream(ctx, poor, 0); !errors.Is(err, paystream.ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
	if got := env.balance(t, poor); got != 50 {
		t.Errorf("balance = %d, want untouched 50", got)
	}
}

func TestLedgerCapacity(t *testing.T) {
	env := newTestEnv(t, paystream.WithLedgerCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(100)); err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
	}

	before := env.balance(t, env.sender)
	_, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(100))
	if !errors.Is(err, paystream.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if got := env.balance(t, env.sender); got != before {
		t.Errorf("rejected open moved money: %d -> %d", before, got)
	}
}

func TestWithdrawMidStream(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}

	env.clock.advance(50 * time.Second)

	got, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if got.Amount != 500 {
		t.Fatalf("withdrew %d, want 500", got.Amount)
	}
	if b := env.balance(t, env.receiver); b != 500 {
		t.Errorf("receiver balance = %d, want 500", b)
	}

	// Immediate retry pays nothing and is not an error.
	got, err = env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if err != nil {
		t.Fatalf("second Withdraw: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("second withdrawal = %d, want 0", got.Amount)
	}

	env.clock.advance(25 * time.Second)
	got, err = env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 250 {
		t.Fatalf("withdrew %d, want 250", got.Amount)
	}

	cur, err := env.engine.GetStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Withdrawn.Amount != 750 {
		t.Errorf("withdrawn = %d, want 750", cur.Withdrawn.Amount)
	}
	if !cur.Active {
		t.Error("stream should still be active")
	}
}

func TestWithdrawFloorsPartialUnits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 1000 units over 3 seconds never vests fractional units; the
	// remainder arrives only at maturity.
	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 3, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}

	env.clock.advance(1 * time.Second)
	got, _ := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if got.Amount != 333 {
		t.Fatalf("t=1 withdrawal = %d, want 333", got.Amount)
	}

	env.clock.advance(1 * time.Second)
	got, _ = env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if got.Amount != 333 {
		t.Fatalf("t=2 withdrawal = %d, want 333", got.Amount)
	}

	env.clock.advance(1 * time.Second)
	got, _ = env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if got.Amount != 334 {
		t.Fatalf("t=3 withdrawal = %d, want 334", got.Amount)
	}
}

func TestWithdrawAtMaturityCompletesStream(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}

	env.clock.advance(250 * time.Second)

	got, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 1000 {
		t.Fatalf("withdrew %d, want full 1000", got.Amount)
	}

	cur, err := env.engine.GetStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Active {
		t.Error("fully drained matured stream should be inactive")
	}
	if b := env.balance(t, st.Custody); b != 0 {
		t.Errorf("custody balance = %d, want 0", b)
	}

	// A completed stream rejects further operations.
	if _, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); !errors.Is(err, paystream.ErrStreamInactive) {
		t.Fatalf("err = %v, want ErrStreamInactive", err)
	}
}

func TestWithdrawAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	env.clock.advance(50 * time.Second)

	// Neither the sender nor a stranger may withdraw.
	for _, caller := range []id.AccountID{env.sender, id.NewAccountID()} {
		if _, err := env.engine.Withdraw(ctx, env.sender, caller, st.Index); !errors.Is(err, paystream.ErrUnauthorized) {
			t.Fatalf("caller %s: err = %v, want ErrUnauthorized", caller, err)
		}
	}

	if _, err := env.engine.Withdraw(ctx, env.sender, env.receiver, 99); !errors.Is(err, paystream.ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestCancelMidStream(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	senderAfterOpen := env.balance(t, env.sender)

	// Withdraw 500 at the midpoint, then cancel at t=60: the receiver
	// is owed the 100 newly vested, the sender gets the unvested 400.
	env.clock.advance(50 * time.Second)
	if _, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); err != nil {
		t.Fatal(err)
	}
	env.clock.advance(10 * time.Second)

	payout, refund, err := env.engine.CancelStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatalf("CancelStream: %v", err)
	}
	if payout.Amount != 100 {
		t.Errorf("payout = %d, want 100", payout.Amount)
	}
	if refund.Amount != 400 {
		t.Errorf("refund = %d, want 400", refund.Amount)
	}

	if b := env.balance(t, env.receiver); b != 600 {
		t.Errorf("receiver balance = %d, want 600", b)
	}
	if b := env.balance(t, env.sender); b != senderAfterOpen+400 {
		t.Errorf("sender balance = %d, want %d", b, senderAfterOpen+400)
	}
	if b := env.balance(t, st.Custody); b != 0 {
		t.Errorf("custody balance = %d, want drained", b)
	}

	cur, err := env.engine.GetStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Active {
		t.Error("canceled stream should be inactive")
	}
	if cur.Withdrawn.Amount != 600 {
		t.Errorf("withdrawn = %d, want settled 600", cur.Withdrawn.Amount)
	}

	// Cancellation is terminal.
	if _, _, err := env.engine.CancelStream(ctx, env.sender, st.Index); !errors.Is(err, paystream.ErrStreamInactive) {
		t.Fatalf("err = %v, want ErrStreamInactive", err)
	}
	if _, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); !errors.Is(err, paystream.ErrStreamInactive) {
		t.Fatalf("err = %v, want ErrStreamInactive", err)
	}
}

func TestCancelWithoutWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	senderAfterOpen := env.balance(t, env.sender)

	env.clock.advance(30 * time.Second)

	payout, refund, err := env.engine.CancelStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatalf("CancelStream: %v", err)
	}
	if payout.Amount != 300 {
		t.Errorf("payout = %d, want 300", payout.Amount)
	}
	if refund.Amount != 700 {
		t.Errorf("refund = %d, want 700", refund.Amount)
	}
	if b := env.balance(t, env.receiver); b != 300 {
		t.Errorf("receiver balance = %d, want 300", b)
	}
	if b := env.balance(t, env.sender); b != senderAfterOpen+700 {
		t.Errorf("sender balance = %d, want %d", b, senderAfterOpen+700)
	}

	cur, err := env.engine.GetStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Active || cur.Withdrawn.Amount != 300 {
		t.Errorf("stream = {active: %v, withdrawn: %d}, want inactive with 300", cur.Active, cur.Withdrawn.Amount)
	}
}

func TestCancelBeforeStartRefundsEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	senderAfterOpen := env.balance(t, env.sender)

	payout, refund, err := env.engine.CancelStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if !payout.IsZero() {
		t.Errorf("payout = %d, want 0", payout.Amount)
	}
	if refund.Amount != 1000 {
		t.Errorf("refund = %d, want 1000", refund.Amount)
	}
	if b := env.balance(t, env.sender); b != senderAfterOpen+1000 {
		t.Errorf("sender balance = %d, want made whole", b)
	}
	if b := env.balance(t, env.receiver); b != 0 {
		t.Errorf("receiver balance = %d, want 0", b)
	}
}

func TestCancelAfterMaturity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	env.clock.advance(500 * time.Second)

	// Everything vested, so cancel is a full payout and zero refund.
	payout, refund, err := env.engine.CancelStream(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if payout.Amount != 1000 {
		t.Errorf("payout = %d, want 1000", payout.Amount)
	}
	if !refund.IsZero() {
		t.Errorf("refund = %d, want 0", refund.Amount)
	}
}

func TestCancelAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}

	// The receiver has no ledger, so their cancel attempt fails at
	// lookup; only the sender's own ledger can cancel this stream.
	if _, _, err := env.engine.CancelStream(ctx, env.receiver, st.Index); !errors.Is(err, paystream.ErrLedgerNotFound) {
		t.Fatalf("err = %v, want ErrLedgerNotFound", err)
	}
}

func TestConservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	total := func(accounts ...id.AccountID) int64 {
		var sum int64
		for _, a := range accounts {
			sum += env.balance(t, a)
		}
		return sum
	}

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(12345))
	if err != nil {
		t.Fatal(err)
	}
	want := total(env.sender, env.receiver, st.Custody)

	env.clock.advance(37 * time.Second)
	if _, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); err != nil {
		t.Fatal(err)
	}
	if got := total(env.sender, env.receiver, st.Custody); got != want {
		t.Fatalf("after withdraw: total = %d, want %d", got, want)
	}

	env.clock.advance(13 * time.Second)
	if _, _, err := env.engine.CancelStream(ctx, env.sender, st.Index); err != nil {
		t.Fatal(err)
	}
	if got := total(env.sender, env.receiver, st.Custody); got != want {
		t.Fatalf("after cancel: total = %d, want %d", got, want)
	}
	if b := env.balance(t, st.Custody); b != 0 {
		t.Fatalf("custody retained %d after cancel", b)
	}
}

func TestTransferJournal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	env.clock.advance(50 * time.Second)
	if _, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); err != nil {
		t.Fatal(err)
	}
	env.clock.advance(10 * time.Second)
	if _, _, err := env.engine.CancelStream(ctx, env.sender, st.Index); err != nil {
		t.Fatal(err)
	}

	transfers, err := env.engine.Transfers(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}

	wantKinds := []treasury.Kind{
		treasury.KindFund,
		treasury.KindWithdrawal,
		treasury.KindPayout,
		treasury.KindRefund,
	}
	if len(transfers) != len(wantKinds) {
		t.Fatalf("journal has %d records, want %d", len(transfers), len(wantKinds))
	}
	for i, k := range wantKinds {
		if transfers[i].Kind != k {
			t.Errorf("transfers[%d].Kind = %s, want %s", i, transfers[i].Kind, k)
		}
	}

	var moved int64
	for _, tr := range transfers[1:] { // skip the funding leg
		moved += tr.Amount.Amount
	}
	if moved != 1000 {
		t.Errorf("withdrawal+payout+refund = %d, want 1000", moved)
	}
}

func TestCliffSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 30% unlocks at the 20 second cliff, the rest vests linearly over
	// the remaining 80 seconds.
	st, err := env.engine.OpenStreamWithSchedule(ctx, env.sender, env.receiver,
		100, types.USD(1000), vesting.Cliff(20, 300))
	if err != nil {
		t.Fatal(err)
	}

	env.clock.advance(10 * time.Second)
	got, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsZero() {
		t.Fatalf("pre-cliff withdrawal = %d, want 0", got.Amount)
	}

	env.clock.advance(10 * time.Second)
	got, err = env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 300 {
		t.Fatalf("at-cliff withdrawal = %d, want 300", got.Amount)
	}
}

func TestStepwiseSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStreamWithSchedule(ctx, env.sender, env.receiver,
		100, types.USD(1000), vesting.Stepwise(4))
	if err != nil {
		t.Fatal(err)
	}

	// Nothing between steps, a full quarter at each boundary.
	env.clock.advance(24 * time.Second)
	if got, _ := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); !got.IsZero() {
		t.Fatalf("t=24 withdrawal = %d, want 0", got.Amount)
	}
	env.clock.advance(1 * time.Second)
	if got, _ := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); got.Amount != 250 {
		t.Fatalf("t=25 withdrawal = %d, want 250", got.Amount)
	}
}

func TestListStreams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(100)); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := env.engine.CancelStream(ctx, env.sender, 1); err != nil {
		t.Fatal(err)
	}

	all, err := env.engine.ListStreams(ctx, env.sender, paystream.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, st := range all {
		if st.Index != uint64(i) {
			t.Errorf("streams[%d].Index = %d, indexes must stay stable", i, st.Index)
		}
	}

	active, err := env.engine.ListStreams(ctx, env.sender, paystream.ListOpts{ActiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("active len = %d, want 2", len(active))
	}
}

func TestWithdrawablePreview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	env.clock.advance(30 * time.Second)

	preview, err := env.engine.Withdrawable(ctx, env.sender, st.Index)
	if err != nil {
		t.Fatal(err)
	}
	if preview.Amount != 300 {
		t.Fatalf("preview = %d, want 300", preview.Amount)
	}
	// Preview moves nothing.
	if b := env.balance(t, env.receiver); b != 0 {
		t.Fatalf("receiver balance = %d after preview, want 0", b)
	}
}

// recordingPlugin captures every hook invocation for assertions.
type recordingPlugin struct {
	events []string
}

func (p *recordingPlugin) Name() string { return "recorder" }

func (p *recordingPlugin) OnStreamOpened(_ context.Context, _ interface{}) error {
	p.events = append(p.events, "opened")
	return nil
}

func (p *recordingPlugin) OnWithdrawal(_ context.Context, _ interface{}, _ types.Money) error {
	p.events = append(p.events, "withdrawal")
	return nil
}

func (p *recordingPlugin) OnStreamCanceled(_ context.Context, _ interface{}, _, _ types.Money) error {
	p.events = append(p.events, "canceled")
	return nil
}

func (p *recordingPlugin) OnTransferFailed(_ context.Context, _ string, _ string, _ error) error {
	p.events = append(p.events, "transfer_failed")
	return nil
}

func TestPluginHooks(t *testing.T) {
	rec := &recordingPlugin{}
	env := newTestEnv(t, paystream.WithPlugin(rec))
	ctx := context.Background()

	st, err := env.engine.OpenStream(ctx, env.sender, env.receiver, 100, types.USD(1000))
	if err != nil {
		t.Fatal(err)
	}
	env.clock.advance(50 * time.Second)
	if _, err := env.engine.Withdraw(ctx, env.sender, env.receiver, st.Index); err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.engine.CancelStream(ctx, env.sender, st.Index); err != nil {
		t.Fatal(err)
	}

	want := []string{"opened", "withdrawal", "canceled"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", rec.events, want)
		}
	}
}
