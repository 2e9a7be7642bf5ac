package paystream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xraph/paystream/id"
	"github.com/xraph/paystream/plugin"
	"github.com/xraph/paystream/store"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/treasury"
	"github.com/xraph/paystream/types"
	"github.com/xraph/paystream/vesting"
)

// Engine is the main payment-streaming engine. It owns the custody
// lifecycle: validation, vesting arithmetic, fund movement through the
// treasury, and persistence. Operations are all-or-nothing: every
// observable side effect happens only after the checks that guard it.
type Engine struct {
	store    store.Store
	treasury treasury.Treasury
	plugins  *plugin.Registry
	logger   *slog.Logger
	clock    Clock

	// mu serializes mutating operations. Ledgers are read-modify-write
	// against the store, so two concurrent mutations on the same
	// authority would otherwise race.
	mu sync.Mutex

	ledgerCapacity int
}

// New creates a new Engine instance backed by the given store and
// treasury.
func New(s store.Store, t treasury.Treasury, opts ...Option) *Engine {
	e := &Engine{
		store:          s,
		treasury:       t,
		plugins:        plugin.NewRegistry(),
		logger:         slog.Default(),
		clock:          SystemClock,
		ledgerCapacity: stream.DefaultCapacity,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock overrides the engine's time source. Tests use this to walk
// streams through their vesting windows deterministically.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLedgerCapacity sets the stream capacity assigned to newly
// initialized ledgers.
func WithLedgerCapacity(n int) Option {
	return func(e *Engine) {
		e.ledgerCapacity = n
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("paystream started",
		"ledger_capacity", e.ledgerCapacity,
		"plugins", e.plugins.Count(),
	)

	return nil
}

// Stop shuts down the engine.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Plugins exposes the plugin registry for post-construction lookup.
func (e *Engine) Plugins() *plugin.Registry {
	return e.plugins
}

// ──────────────────────────────────────────────────
// Ledger Management
// ──────────────────────────────────────────────────

// InitializeLedger creates the per-sender stream collection for caller.
// Each authority gets exactly one ledger; a second call fails with
// ErrLedgerExists and leaves the first untouched.
func (e *Engine) InitializeLedger(ctx context.Context, caller id.AccountID) (*stream.Ledger, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := stream.NewLedger(caller, e.ledgerCapacity)

	if err := e.store.CreateLedger(ctx, l); err != nil {
		return nil, err
	}

	e.plugins.EmitLedgerInitialized(ctx, l)

	e.logger.Info("ledger initialized",
		"ledger", l.ID,
		"authority", caller,
		"capacity", l.Capacity,
	)

	return l, nil
}

// GetLedger retrieves the ledger owned by authority.
func (e *Engine) GetLedger(ctx context.Context, authority id.AccountID) (*stream.Ledger, error) {
	return e.store.GetLedger(ctx, authority)
}

// ──────────────────────────────────────────────────
// Stream Operations
// ──────────────────────────────────────────────────

// OpenStream opens a linearly vesting stream from caller to receiver.
// The committed amount moves from the caller's account into a fresh
// custody account before the stream becomes visible.
func (e *Engine) OpenStream(ctx context.Context, caller, receiver id.AccountID, duration int64, amount types.Money) (*stream.Stream, error) {
	return e.OpenStreamWithSchedule(ctx, caller, receiver, duration, amount, vesting.Linear())
}

// OpenStreamWithSchedule opens a stream with an explicit vesting
// schedule. The window starts at the engine clock's current second and
// runs for duration seconds.
func (e *Engine) OpenStreamWithSchedule(ctx context.Context, caller, receiver id.AccountID, duration int64, amount types.Money, sched vesting.Schedule) (*stream.Stream, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}
	if receiver.IsNil() {
		return nil, ErrInvalidReceiver
	}
	if err := sched.Validate(amount.Amount, duration); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	l, err := e.store.GetLedger(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	st := &stream.Stream{
		Entity:    types.NewEntityAt(now),
		ID:        id.NewStreamID(),
		Sender:    caller,
		Receiver:  receiver,
		Custody:   id.NewAccountID(),
		StartTime: now.Unix(),
		EndTime:   now.Unix() + duration,
		Amount:    amount,
		Withdrawn: types.Zero(amount.Currency),
		Active:    true,
		Schedule:  sched,
	}

	if _, err := l.Append(st); err != nil {
		return nil, err
	}

	// Fund custody before the stream is persisted. If funding fails the
	// in-memory append is discarded along with the loaded ledger.
	if err := e.transfer(ctx, st, treasury.KindFund, caller, st.Custody, amount); err != nil {
		return nil, err
	}

	if err := e.store.AppendStream(ctx, caller, st); err != nil {
		// Unwind the funding transfer so custody never holds money for
		// a stream that does not exist.
		if cerr := e.treasury.Transfer(ctx, st.Custody, caller, amount); cerr != nil {
			e.logger.Error("failed to unwind funding transfer",
				"stream", st.ID,
				"custody", st.Custody,
				"error", cerr,
			)
		}
		return nil, err
	}

	e.journal(ctx, st, treasury.KindFund, caller, st.Custody, amount)
	e.plugins.EmitStreamOpened(ctx, st)

	e.logger.Info("stream opened",
		"stream", st.ID,
		"sender", caller,
		"receiver", receiver,
		"index", st.Index,
		"amount", amount,
		"duration", duration,
		"schedule", sched.Kind,
	)

	return st, nil
}

// Withdraw pays the caller every vested minor unit not yet claimed from
// the stream at index in authority's ledger. The caller must be the
// stream's receiver. Withdrawing when nothing has newly vested is a
// successful no-op returning zero.
func (e *Engine) Withdraw(ctx context.Context, authority, caller id.AccountID, index uint64) (types.Money, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, err := e.store.GetLedger(ctx, authority)
	if err != nil {
		return types.Money{}, err
	}

	if _, err := l.RequireActive(index); err != nil {
		return types.Money{}, err
	}
	st, err := l.RequireReceiver(index, caller)
	if err != nil {
		return types.Money{}, err
	}

	now := e.clock.Now().Unix()
	due, err := st.Withdrawable(now)
	if err != nil {
		return types.Money{}, err
	}
	if due.IsZero() {
		return types.Zero(st.Amount.Currency), nil
	}

	// Prove the post-state fits in an int64 before moving any money.
	newWithdrawn, ok := st.Withdrawn.AddChecked(due)
	if !ok {
		return types.Money{}, ErrArithmeticOverflow
	}

	if err := e.transfer(ctx, st, treasury.KindWithdrawal, st.Custody, caller, due); err != nil {
		return types.Money{}, err
	}

	completed := st.Matured(now) && newWithdrawn.Equal(st.Amount)
	err = l.Commit(index, func(s *stream.Stream) error {
		s.Withdrawn = newWithdrawn
		if completed {
			s.Active = false
		}
		return nil
	})
	if err != nil {
		return types.Money{}, err
	}

	if err := e.store.UpdateStream(ctx, authority, st); err != nil {
		if cerr := e.treasury.Transfer(ctx, caller, st.Custody, due); cerr != nil {
			e.logger.Error("failed to unwind withdrawal transfer",
				"stream", st.ID,
				"receiver", caller,
				"error", cerr,
			)
		}
		return types.Money{}, err
	}

	e.journal(ctx, st, treasury.KindWithdrawal, st.Custody, caller, due)
	e.plugins.EmitWithdrawal(ctx, st, due)
	if completed {
		e.plugins.EmitStreamCompleted(ctx, st)
	}

	e.logger.Info("withdrawal",
		"stream", st.ID,
		"receiver", caller,
		"amount", due,
		"withdrawn_total", newWithdrawn,
		"completed", completed,
	)

	return due, nil
}

// CancelStream terminates the stream at index in the caller's own
// ledger. Vesting stops at the moment of cancellation: the receiver is
// paid whatever had vested beyond what they already withdrew, the
// sender is refunded everything that never vested, and the stream
// deactivates permanently. Returns the payout and refund actually
// moved.
func (e *Engine) CancelStream(ctx context.Context, caller id.AccountID, index uint64) (types.Money, types.Money, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, err := e.store.GetLedger(ctx, caller)
	if err != nil {
		return types.Money{}, types.Money{}, err
	}

	if _, err := l.RequireActive(index); err != nil {
		return types.Money{}, types.Money{}, err
	}
	st, err := l.RequireSender(index, caller)
	if err != nil {
		return types.Money{}, types.Money{}, err
	}

	now := e.clock.Now().Unix()
	vested := st.VestedAt(now)

	// The receiver keeps everything vested at cancellation but is never
	// paid twice: the payout tops them up from what they already
	// withdrew to the vested amount, and settles at zero if they are
	// somehow ahead of it.
	settled := vested.Max(st.Withdrawn)
	payout, _ := vested.SubtractChecked(st.Withdrawn)
	payout = payout.Max(types.Zero(vested.Currency))

	refund, ok := st.Amount.SubtractChecked(settled)
	if !ok {
		return types.Money{}, types.Money{}, ErrArithmeticUnderflow
	}

	if payout.IsPositive() {
		if err := e.transfer(ctx, st, treasury.KindPayout, st.Custody, st.Receiver, payout); err != nil {
			return types.Money{}, types.Money{}, err
		}
	}
	if refund.IsPositive() {
		if err := e.transfer(ctx, st, treasury.KindRefund, st.Custody, caller, refund); err != nil {
			// The payout already moved; pull it back so cancellation
			// stays all-or-nothing.
			if payout.IsPositive() {
				if cerr := e.treasury.Transfer(ctx, st.Receiver, st.Custody, payout); cerr != nil {
					e.logger.Error("failed to unwind cancel payout",
						"stream", st.ID,
						"receiver", st.Receiver,
						"error", cerr,
					)
				}
			}
			return types.Money{}, types.Money{}, err
		}
	}

	err = l.Commit(index, func(s *stream.Stream) error {
		s.Withdrawn = settled
		s.Active = false
		return nil
	})
	if err != nil {
		return types.Money{}, types.Money{}, err
	}

	if err := e.store.UpdateStream(ctx, caller, st); err != nil {
		if payout.IsPositive() {
			if cerr := e.treasury.Transfer(ctx, st.Receiver, st.Custody, payout); cerr != nil {
				e.logger.Error("failed to unwind cancel payout", "stream", st.ID, "error", cerr)
			}
		}
		if refund.IsPositive() {
			if cerr := e.treasury.Transfer(ctx, caller, st.Custody, refund); cerr != nil {
				e.logger.Error("failed to unwind cancel refund", "stream", st.ID, "error", cerr)
			}
		}
		return types.Money{}, types.Money{}, err
	}

	if payout.IsPositive() {
		e.journal(ctx, st, treasury.KindPayout, st.Custody, st.Receiver, payout)
	}
	if refund.IsPositive() {
		e.journal(ctx, st, treasury.KindRefund, st.Custody, caller, refund)
	}
	e.plugins.EmitStreamCanceled(ctx, st, payout, refund)

	e.logger.Info("stream canceled",
		"stream", st.ID,
		"sender", caller,
		"vested", vested,
		"payout", payout,
		"refund", refund,
	)

	return payout, refund, nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// GetStream retrieves the stream at index in authority's ledger.
func (e *Engine) GetStream(ctx context.Context, authority id.AccountID, index uint64) (*stream.Stream, error) {
	l, err := e.store.GetLedger(ctx, authority)
	if err != nil {
		return nil, err
	}
	return l.Get(index)
}

// ListStreams lists streams in authority's ledger, in index order.
func (e *Engine) ListStreams(ctx context.Context, authority id.AccountID, opts stream.ListOpts) ([]*stream.Stream, error) {
	return e.store.ListStreams(ctx, authority, opts)
}

// Withdrawable previews what a withdrawal at this instant would pay,
// without moving anything.
func (e *Engine) Withdrawable(ctx context.Context, authority id.AccountID, index uint64) (types.Money, error) {
	l, err := e.store.GetLedger(ctx, authority)
	if err != nil {
		return types.Money{}, err
	}
	st, err := l.Get(index)
	if err != nil {
		return types.Money{}, err
	}
	return st.Withdrawable(e.clock.Now().Unix())
}

// Transfers returns the journal of custody movements for a stream.
func (e *Engine) Transfers(ctx context.Context, streamID id.StreamID) ([]*treasury.Transfer, error) {
	return e.store.ListTransfers(ctx, streamID)
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

// transfer moves funds through the treasury, emitting the failure hook
// and wrapping into the module taxonomy when the treasury rejects it.
func (e *Engine) transfer(ctx context.Context, st *stream.Stream, kind treasury.Kind, from, to id.AccountID, amount types.Money) error {
	if err := e.treasury.Transfer(ctx, from, to, amount); err != nil {
		e.plugins.EmitTransferFailed(ctx, st.ID.String(), string(kind), err)
		e.logger.Warn("transfer rejected",
			"stream", st.ID,
			"kind", kind,
			"from", from,
			"to", to,
			"amount", amount,
			"error", err,
		)
		return fmt.Errorf("%w: %s: %w", ErrTransferFailed, kind, err)
	}
	return nil
}

// journal records a completed movement. Journal writes never fail the
// operation they describe; a miss is logged and the money has already
// moved.
func (e *Engine) journal(ctx context.Context, st *stream.Stream, kind treasury.Kind, from, to id.AccountID, amount types.Money) {
	t := &treasury.Transfer{
		ID:       id.NewTransferID(),
		Stream:   st.ID,
		From:     from,
		To:       to,
		Amount:   amount,
		Kind:     kind,
		Executed: e.clock.Now(),
	}
	if err := e.store.RecordTransfer(ctx, t); err != nil {
		e.logger.Warn("transfer journal write failed",
			"transfer", t.ID,
			"stream", st.ID,
			"kind", kind,
			"error", err,
		)
	}
}
