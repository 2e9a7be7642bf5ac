package extension

// Config holds the paystream extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.paystream" or "paystream" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// LedgerCapacity is the stream capacity assigned to newly
	// initialized ledgers (default: 20).
	LedgerCapacity int `json:"ledger_capacity" mapstructure:"ledger_capacity" yaml:"ledger_capacity"`

	// Currency is the minor-unit currency code used when the extension
	// constructs its own in-memory treasury (default: "usd").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LedgerCapacity: 20,
		Currency:       "usd",
	}
}
