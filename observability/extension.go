// Package observability provides a metrics extension for paystream that
// records lifecycle event counts via an injected MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/paystream/plugin"
	"github.com/xraph/paystream/stream"
	"github.com/xraph/paystream/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnLedgerInitialized = (*MetricsExtension)(nil)
	_ plugin.OnStreamOpened      = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawal        = (*MetricsExtension)(nil)
	_ plugin.OnStreamCanceled    = (*MetricsExtension)(nil)
	_ plugin.OnStreamCompleted   = (*MetricsExtension)(nil)
	_ plugin.OnTransferFailed    = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as an engine plugin to automatically track payment
// streaming metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Ledger metrics
	LedgersInitialized Counter

	// Stream metrics
	StreamsOpened    Counter
	StreamsCanceled  Counter
	StreamsCompleted Counter
	StreamCommitted  Histogram
	StreamDuration   Histogram

	// Funds metrics
	Withdrawals      Counter
	WithdrawalAmount Histogram
	PayoutAmount     Histogram
	RefundAmount     Histogram
	TransferFailures Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Ledger metrics
		LedgersInitialized: factory.Counter("paystream.ledger.initialized"),

		// Stream metrics
		StreamsOpened:    factory.Counter("paystream.stream.opened"),
		StreamsCanceled:  factory.Counter("paystream.stream.canceled"),
		StreamsCompleted: factory.Counter("paystream.stream.completed"),
		StreamCommitted:  factory.Histogram("paystream.stream.committed_amount"),
		StreamDuration:   factory.Histogram("paystream.stream.duration_seconds"),

		// Funds metrics
		Withdrawals:      factory.Counter("paystream.withdrawal.count"),
		WithdrawalAmount: factory.Histogram("paystream.withdrawal.amount"),
		PayoutAmount:     factory.Histogram("paystream.cancel.payout_amount"),
		RefundAmount:     factory.Histogram("paystream.cancel.refund_amount"),
		TransferFailures: factory.Counter("paystream.transfer.failures"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Ledger lifecycle hooks
// ──────────────────────────────────────────────────

// OnLedgerInitialized implements plugin.OnLedgerInitialized.
func (m *MetricsExtension) OnLedgerInitialized(_ context.Context, _ interface{}) error {
	m.LedgersInitialized.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Stream lifecycle hooks
// ──────────────────────────────────────────────────

// OnStreamOpened implements plugin.OnStreamOpened.
func (m *MetricsExtension) OnStreamOpened(_ context.Context, raw interface{}) error {
	m.StreamsOpened.Inc()
	if s, ok := raw.(*stream.Stream); ok {
		m.StreamCommitted.Observe(float64(s.Amount.Amount))
		m.StreamDuration.Observe(float64(s.Duration()))
	}
	return nil
}

// OnStreamCanceled implements plugin.OnStreamCanceled.
func (m *MetricsExtension) OnStreamCanceled(_ context.Context, _ interface{}, payout, refund types.Money) error {
	m.StreamsCanceled.Inc()
	m.PayoutAmount.Observe(float64(payout.Amount))
	m.RefundAmount.Observe(float64(refund.Amount))
	return nil
}

// OnStreamCompleted implements plugin.OnStreamCompleted.
func (m *MetricsExtension) OnStreamCompleted(_ context.Context, _ interface{}) error {
	m.StreamsCompleted.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Funds hooks
// ──────────────────────────────────────────────────

// OnWithdrawal implements plugin.OnWithdrawal.
func (m *MetricsExtension) OnWithdrawal(_ context.Context, _ interface{}, amount types.Money) error {
	m.Withdrawals.Inc()
	m.WithdrawalAmount.Observe(float64(amount.Amount))
	return nil
}

// OnTransferFailed implements plugin.OnTransferFailed.
func (m *MetricsExtension) OnTransferFailed(_ context.Context, _, _ string, _ error) error {
	m.TransferFailures.Inc()
	return nil
}
