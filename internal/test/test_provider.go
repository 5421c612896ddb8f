package test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/wallet/provider"
)

// TestProviderID is the id the deterministic signing agent is registered
// under in every test server.
const TestProviderID = "test"

// TestProviderAddress is the address the test provider connects as.
const TestProviderAddress = "0x52908400098527886E0F7030069857D2E4169EE7"

// RegisterTestProvider adds the deterministic in-process signing agent to the
// server's provider registry.
func RegisterTestProvider(s *api.Server) error {
	return s.Registry.Register(TestProviderID, func() (provider.Adapter, error) {
		return &testAdapter{chainID: s.Config.Wallet.DefaultChainID}, nil
	})
}

// testAdapter is a deterministic signing agent. Signatures are content
// hashes, not real cryptography, which keeps handler tests reproducible.
type testAdapter struct {
	chainID int64
}

func (a *testAdapter) ID() string { return TestProviderID }

func (a *testAdapter) Connect(_ context.Context, _ provider.Metadata) (*provider.Credentials, error) {
	return &provider.Credentials{
		Address:   TestProviderAddress,
		PublicKey: "test-public-key",
		ChainID:   a.chainID,
	}, nil
}

func (a *testAdapter) Disconnect(_ context.Context) error { return nil }

func (a *testAdapter) SignTransaction(_ context.Context, payload []byte) (*provider.SignedArtifact, error) {
	digest := sha256.Sum256(payload)

	return &provider.SignedArtifact{
		Raw:    digest[:],
		Hash:   "0x" + hex.EncodeToString(digest[:]),
		Signer: TestProviderAddress,
	}, nil
}

func (a *testAdapter) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	return digest[:], nil
}

func (a *testAdapter) Installed(_ context.Context) bool { return true }
