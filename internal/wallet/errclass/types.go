package errclass

import "time"

// Kind is one entry of the error taxonomy. Every fault raised anywhere in the
// wallet core is mapped to exactly one Kind before it reaches a caller.
type Kind string

const (
	KindUserRejected        Kind = "user_rejected"
	KindInvalidRequest      Kind = "invalid_request"
	KindNetworkError        Kind = "network_error"
	KindTimeout             Kind = "timeout"
	KindHardwareError       Kind = "hardware_error"
	KindInsufficientFunds   Kind = "insufficient_funds"
	KindNonceConflict       Kind = "nonce_conflict"
	KindGasEstimationFailed Kind = "gas_estimation_failed"
	KindSimulationFailed    Kind = "simulation_failed"
	KindWalletNotInstalled  Kind = "wallet_not_installed"
	KindUnknown             Kind = "unknown"
)

// Recoverable reports whether the kind's recovery strategy allows retries.
func (k Kind) Recoverable() bool {
	return StrategyFor(k).ShouldRetry
}

// RecoveryStrategy describes how a fault of a given kind may be recovered.
// It is a pure descriptor derived from the taxonomy, never persisted.
type RecoveryStrategy struct {
	ShouldRetry       bool
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	SuggestedAction   string
}

// Error is a raw fault mapped to a taxonomy kind. The user-visible message is
// fixed per kind; the raw cause stays available for logging and telemetry.
type Error struct {
	kind  Kind
	cause error
}

// New wraps cause as a classified error of the given kind.
func New(kind Kind, cause error) *Error {
	return &Error{kind: kind, cause: cause}
}

// Kind returns the taxonomy entry of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error returns the fixed human-readable message for the error's kind,
// never the raw underlying message.
func (e *Error) Error() string {
	return MessageFor(e.kind)
}

// Cause returns the raw underlying error.
func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Strategy returns the recovery strategy for the error's kind.
func (e *Error) Strategy() RecoveryStrategy {
	return StrategyFor(e.kind)
}
