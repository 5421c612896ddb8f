package errclass

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Sentinel errors provider adapters and collaborators may surface directly.
// Anything else is matched heuristically and falls back to KindUnknown.
var (
	ErrUserRejected       = errors.New("user rejected the request")
	ErrWalletNotInstalled = errors.New("wallet is not installed")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrHardwareFault      = errors.New("hardware signing device fault")
	ErrNonceConflict      = errors.New("nonce conflict")
)

// Classify maps a raised fault to its taxonomy entry. Already-classified
// errors pass through unchanged, including wrapped ones.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	return New(kindOf(err), err)
}

//nolint:cyclop // single dispatch table over the whole taxonomy
func kindOf(err error) Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindUserRejected
	case errors.Is(err, ErrUserRejected):
		return KindUserRejected
	case errors.Is(err, ErrWalletNotInstalled):
		return KindWalletNotInstalled
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrHardwareFault):
		return KindHardwareError
	case errors.Is(err, ErrNonceConflict):
		return KindNonceConflict
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetworkError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied"):
		return KindUserRejected
	case strings.Contains(msg, "insufficient funds") || strings.Contains(msg, "insufficient balance"):
		return KindInsufficientFunds
	case strings.Contains(msg, "nonce too low") || strings.Contains(msg, "replacement transaction underpriced"):
		return KindNonceConflict
	case strings.Contains(msg, "gas estimation") || strings.Contains(msg, "gas required exceeds"):
		return KindGasEstimationFailed
	case strings.Contains(msg, "execution reverted") || strings.Contains(msg, "simulation failed"):
		return KindSimulationFailed
	case strings.Contains(msg, "not installed"):
		return KindWalletNotInstalled
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") || strings.Contains(msg, "no such host"):
		return KindNetworkError
	}

	return KindUnknown
}

var strategies = map[Kind]RecoveryStrategy{
	KindUserRejected: {
		SuggestedAction: "ask the user to approve the request",
	},
	KindInvalidRequest: {
		SuggestedAction: "correct the request and resubmit",
	},
	KindNetworkError: {
		ShouldRetry:       true,
		MaxRetries:        3,
		InitialDelay:      1000 * time.Millisecond,
		BackoffMultiplier: 2,
		SuggestedAction:   "retried automatically",
	},
	KindTimeout: {
		ShouldRetry:       true,
		MaxRetries:        3,
		InitialDelay:      1000 * time.Millisecond,
		BackoffMultiplier: 2,
		SuggestedAction:   "retried automatically",
	},
	KindHardwareError: {
		ShouldRetry:       true,
		MaxRetries:        2,
		InitialDelay:      1000 * time.Millisecond,
		BackoffMultiplier: 1.5,
		SuggestedAction:   "check the device connection",
	},
	KindInsufficientFunds: {
		SuggestedAction: "top up the account",
	},
	KindNonceConflict: {
		ShouldRetry:     true,
		MaxRetries:      1,
		SuggestedAction: "refresh the nonce and retry",
	},
	KindGasEstimationFailed: {
		ShouldRetry:       true,
		MaxRetries:        2,
		InitialDelay:      1000 * time.Millisecond,
		BackoffMultiplier: 1.5,
		SuggestedAction:   "retry with adjusted gas parameters",
	},
	KindSimulationFailed: {
		SuggestedAction: "review the transaction parameters",
	},
	KindWalletNotInstalled: {
		SuggestedAction: "open install link",
	},
	KindUnknown: {
		ShouldRetry:       true,
		MaxRetries:        1,
		InitialDelay:      1000 * time.Millisecond,
		BackoffMultiplier: 2,
		SuggestedAction:   "retry once",
	},
}

// StrategyFor returns the fixed recovery strategy for the given kind.
// Unlisted kinds resolve to the KindUnknown strategy.
func StrategyFor(kind Kind) RecoveryStrategy {
	if s, ok := strategies[kind]; ok {
		return s
	}
	return strategies[KindUnknown]
}

var messages = map[Kind]string{
	KindUserRejected:        "The signing request was declined.",
	KindInvalidRequest:      "The request is invalid and cannot be processed.",
	KindNetworkError:        "A network error occurred. Please try again.",
	KindTimeout:             "The operation timed out.",
	KindHardwareError:       "The signing device reported a fault.",
	KindInsufficientFunds:   "Insufficient funds to complete this transaction.",
	KindNonceConflict:       "The transaction nonce is out of date.",
	KindGasEstimationFailed: "Unable to estimate the transaction fee.",
	KindSimulationFailed:    "The transaction would fail and was not submitted.",
	KindWalletNotInstalled:  "The selected wallet is not installed.",
	KindUnknown:             "An unexpected error occurred.",
}

// MessageFor returns the fixed human-readable message for the given kind.
func MessageFor(kind Kind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[KindUnknown]
}
