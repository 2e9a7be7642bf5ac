// Package audithook bridges paystream lifecycle events to an audit
// trail backend.
//
// It defines a local Recorder interface so the package does not import
// an audit module directly. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/paystream/plugin"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnLedgerInitialized = (*Extension)(nil)
	_ plugin.OnStreamOpened      = (*Extension)(nil)
	_ plugin.OnWithdrawal        = (*Extension)(nil)
	_ plugin.OnStreamCanceled    = (*Extension)(nil)
	_ plugin.OnStreamCompleted   = (*Extension)(nil)
	_ plugin.OnTransferFailed    = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that this package carries no dependency on
// any particular audit system.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges paystream lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Ledger lifecycle hooks
// ──────────────────────────────────────────────────

// OnLedgerInitialized implements plugin.OnLedgerInitialized.
func (e *Extension) OnLedgerInitialized(ctx context.Context, raw interface{}) error {
	var ledgerID, authority string
	if l, ok := raw.(*stream.Ledger); ok {
		ledgerID = l.ID.String()
		authority = l.Authority.String()
	}
	return e.record(ctx, ActionLedgerInitialized, SeverityInfo, OutcomeSuccess,
		ResourceLedger, ledgerID, CategoryLifecycle, nil,
		"authority", authority,
	)
}

// ──────────────────────────────────────────────────
// Stream lifecycle hooks
// ──────────────────────────────────────────────────

// OnStreamOpened implements plugin.OnStreamOpened.
func (e *Extension) OnStreamOpened(ctx context.Context, raw interface{}) error {
	id, meta := streamDetails(raw)
	return e.record(ctx, ActionStreamOpened, SeverityInfo, OutcomeSuccess,
		ResourceStream, id, CategoryLifecycle, nil, meta...)
}

// OnStreamCanceled implements plugin.OnStreamCanceled.
func (e *Extension) OnStreamCanceled(ctx context.Context, raw interface{}, payout, refund types.Money) error {
	id, meta := streamDetails(raw)
	meta = append(meta,
		"payout", payout.Amount,
		"refund", refund.Amount,
	)
	return e.record(ctx, ActionStreamCanceled, SeverityInfo, OutcomeSuccess,
		ResourceStream, id, CategoryLifecycle, nil, meta...)
}

// OnStreamCompleted implements plugin.OnStreamCompleted.
func (e *Extension) OnStreamCompleted(ctx context.Context, raw interface{}) error {
	id, meta := streamDetails(raw)
	return e.record(ctx, ActionStreamCompleted, SeverityInfo, OutcomeSuccess,
		ResourceStream, id, CategoryLifecycle, nil, meta...)
}

// ──────────────────────────────────────────────────
// Funds hooks
// ──────────────────────────────────────────────────

// OnWithdrawal implements plugin.OnWithdrawal.
func (e *Extension) OnWithdrawal(ctx context.Context, raw interface{}, amount types.Money) error {
	id, meta := streamDetails(raw)
	meta = append(meta, "amount", amount.Amount, "currency", amount.Currency)
	return e.record(ctx, ActionWithdrawal, SeverityInfo, OutcomeSuccess,
		ResourceStream, id, CategoryPayment, nil, meta...)
}

// OnTransferFailed implements plugin.OnTransferFailed.
func (e *Extension) OnTransferFailed(ctx context.Context, streamID, kind string, failure error) error {
	return e.record(ctx, ActionTransferFailed, SeverityError, OutcomeFailure,
		ResourceTransfer, streamID, CategoryPayment, failure,
		"stream_id", streamID,
		"kind", kind,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// streamDetails extracts the stream ID and common metadata pairs.
func streamDetails(raw interface{}) (string, []any) {
	s, ok := raw.(*stream.Stream)
	if !ok {
		return "", nil
	}
	return s.ID.String(), []any{
		"sender", s.Sender.String(),
		"receiver", s.Receiver.String(),
		"index", s.Index,
		"committed", s.Amount.Amount,
		"currency", s.Amount.Currency,
	}
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
