// Package plugin provides an extensible plugin system for paystream.
// Plugins can hook into stream lifecycle events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/paystream/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Ledger lifecycle hooks
// ──────────────────────────────────────────────────

// OnLedgerInitialized is called when a sender initializes a ledger.
type OnLedgerInitialized interface {
	Plugin
	OnLedgerInitialized(ctx context.Context, ledger interface{}) error
}

// ──────────────────────────────────────────────────
// Stream lifecycle hooks
// ──────────────────────────────────────────────────

// OnStreamOpened is called after a stream is opened and funded.
type OnStreamOpened interface {
	Plugin
	OnStreamOpened(ctx context.Context, stream interface{}) error
}

// OnWithdrawal is called after a receiver withdraws vested funds.
type OnWithdrawal interface {
	Plugin
	OnWithdrawal(ctx context.Context, stream interface{}, amount types.Money) error
}

// OnStreamCanceled is called after a sender cancels a stream.
type OnStreamCanceled interface {
	Plugin
	OnStreamCanceled(ctx context.Context, stream interface{}, payout, refund types.Money) error
}

// OnStreamCompleted is called when a stream becomes inactive because the
// receiver has withdrawn the full committed amount.
type OnStreamCompleted interface {
	Plugin
	OnStreamCompleted(ctx context.Context, stream interface{}) error
}

// ──────────────────────────────────────────────────
// Transfer hooks
// ──────────────────────────────────────────────────

// OnTransferFailed is called when a custody transfer is rejected by the
// treasury. The operation the transfer belonged to has already failed.
type OnTransferFailed interface {
	Plugin
	OnTransferFailed(ctx context.Context, streamID string, kind string, err error) error
}
