package provider

import "context"

// Metadata describes the connecting client application, handed to the signing
// agent during the handshake.
type Metadata struct {
	AppName string
	AppURL  string
	ChainID int64
}

// Credentials is the authorization identity a successful handshake yields.
type Credentials struct {
	Address   string
	PublicKey string
	ChainID   int64
}

// SignedArtifact is a provider-produced signature over a transaction payload.
type SignedArtifact struct {
	// Raw is the serialized signed transaction, ready for broadcast.
	Raw []byte
	// Hash is the provider-reported transaction hash (hex, 0x-prefixed).
	Hash string
	// Signer is the address that produced the signature.
	Signer string
}

// Adapter is the capability contract every signing agent must satisfy.
// Adapters surface failures as raw errors; classification happens in the
// coordinating core, never here.
type Adapter interface {
	// ID returns the stable provider identifier the adapter is registered under.
	ID() string

	// Connect performs the handshake and returns the authorization identity.
	Connect(ctx context.Context, meta Metadata) (*Credentials, error)

	// Disconnect tears down the remote side of the binding. Best effort; the
	// caller's local state stays authoritative regardless of the outcome.
	Disconnect(ctx context.Context) error

	// SignTransaction signs the given transaction payload.
	SignTransaction(ctx context.Context, payload []byte) (*SignedArtifact, error)

	// SignMessage signs an arbitrary message.
	SignMessage(ctx context.Context, message []byte) ([]byte, error)

	// Installed reports whether the signing agent is available at all.
	Installed(ctx context.Context) bool
}

// Factory constructs an adapter instance. The registry invokes it lazily on
// first resolve and caches the handle for the process lifetime.
type Factory func() (Adapter, error)
