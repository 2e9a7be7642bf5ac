package extension

import (
	paystream "github.com/xraph/paystream"
	"github.com/xraph/paystream/plugin"
	"github.com/xraph/paystream/store"
	"github.com/xraph/paystream/treasury"
)

// Option configures the paystream Forge extension.
type Option func(*Extension)

// WithStore sets the store for the engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithTreasury sets the funds collaborator for the engine.
func WithTreasury(t treasury.Treasury) Option {
	return func(e *Extension) {
		e.treasury = t
	}
}

// WithEngineOption passes a paystream.Option through to the underlying engine.
func WithEngineOption(opt paystream.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers an engine plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, paystream.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithLedgerCapacity sets the stream capacity for new ledgers.
func WithLedgerCapacity(n int) Option {
	return func(e *Extension) { e.config.LedgerCapacity = n }
}

// WithCurrency sets the currency used by the extension's default
// in-memory treasury.
func WithCurrency(code string) Option {
	return func(e *Extension) { e.config.Currency = code }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
