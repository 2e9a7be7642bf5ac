package audithook

// Action constants for audit events.
const (
	// Ledger actions
	ActionLedgerInitialized = "ledger.initialized"

	// Stream actions
	ActionStreamOpened    = "stream.opened"
	ActionStreamCanceled  = "stream.canceled"
	ActionStreamCompleted = "stream.completed"

	// Funds actions
	ActionWithdrawal     = "funds.withdrawn"
	ActionTransferFailed = "funds.transfer_failed"
)

// Resource constants for audit events.
const (
	ResourceLedger   = "ledger"
	ResourceStream   = "stream"
	ResourceTransfer = "transfer"
)

// Category constants for audit events.
const (
	CategoryLifecycle = "lifecycle"
	CategoryPayment   = "payment"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
