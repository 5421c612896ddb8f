package connection

import (
	"time"

	"github.com/aarondl/null/v8"
)

// State is the connection lifecycle state.
type State string

const (
	// StateDisconnected is the initial state, no session exists.
	StateDisconnected State = "disconnected"
	// StateConnecting means a handshake is in flight.
	StateConnecting State = "connecting"
	// StateConnected means a session is active and trusted.
	StateConnected State = "connected"
	// StateError means the last connect attempt failed.
	StateError State = "error"
	// StateUnknown is used when a prior session's validity cannot be
	// determined, e.g. after a process restart before restore completes.
	StateUnknown State = "unknown"
)

// Session is one logical binding between the client and a signing agent.
// Address and PublicKey are present iff Status is StateConnected.
type Session struct {
	Status      State       `json:"status"`
	ProviderID  string      `json:"providerId"`
	Address     string      `json:"address"`
	PublicKey   string      `json:"publicKey"`
	ChainID     int64       `json:"chainId"`
	ConnectedAt time.Time   `json:"connectedAt"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	LastError   null.String `json:"lastError"`
}

// Expired reports whether the session's credential trust window has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
