// Package extension provides the Forge extension adapter for paystream.
//
// It implements the forge.Extension interface to integrate paystream
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.paystream" or
// "paystream" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	paystream "github.com/xraph/paystream"
	"github.com/xraph/paystream/store"
	"github.com/xraph/paystream/store/memory"
	"github.com/xraph/paystream/treasury"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "paystream"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Custodial payment-streaming engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts paystream as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *paystream.Engine
	store      store.Store
	treasury   treasury.Treasury
	engineOpts []paystream.Option
}

// New creates a new paystream Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying paystream engine.
// This is nil until Register is called.
func (e *Extension) Engine() *paystream.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use in-memory collaborators when none were provided
	// programmatically.
	if e.store == nil {
		e.store = memory.New()
	}
	if e.treasury == nil {
		e.treasury = treasury.NewMemory(e.config.Currency)
	}

	opts := e.buildEngineOpts()

	eng := paystream.New(e.store, e.treasury, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*paystream.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("paystream: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("paystream: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs paystream.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []paystream.Option {
	opts := make([]paystream.Option, 0, len(e.engineOpts)+1)

	if e.config.LedgerCapacity > 0 {
		opts = append(opts, paystream.WithLedgerCapacity(e.config.LedgerCapacity))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("paystream: configuration is required but not found in config files; " +
				"ensure 'extensions.paystream' or 'paystream' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("paystream: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("ledger_capacity", e.config.LedgerCapacity),
		forge.F("currency", e.config.Currency),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.paystream" first (namespaced pattern).
	if cm.IsSet("extensions.paystream") {
		if err := cm.Bind("extensions.paystream", &cfg); err == nil {
			e.Logger().Debug("paystream: loaded config from file",
				forge.F("key", "extensions.paystream"),
			)
			return cfg, true
		}
		e.Logger().Warn("paystream: failed to bind extensions.paystream config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "paystream" key.
	if cm.IsSet("paystream") {
		if err := cm.Bind("paystream", &cfg); err == nil {
			e.Logger().Debug("paystream: loaded config from file",
				forge.F("key", "paystream"),
			)
			return cfg, true
		}
		e.Logger().Warn("paystream: failed to bind paystream config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.LedgerCapacity == 0 {
		cfg.LedgerCapacity = defaults.LedgerCapacity
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// Int/string fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.LedgerCapacity == 0 && programmaticConfig.LedgerCapacity != 0 {
		yamlConfig.LedgerCapacity = programmaticConfig.LedgerCapacity
	}
	if yamlConfig.Currency == "" && programmaticConfig.Currency != "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
