package provider_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/wallet/provider"
)

type stubAdapter struct {
	id string
}

func (a *stubAdapter) ID() string { return a.id }

func (a *stubAdapter) Connect(_ context.Context, _ provider.Metadata) (*provider.Credentials, error) {
	return &provider.Credentials{Address: "0x1", ChainID: 1}, nil
}

func (a *stubAdapter) Disconnect(_ context.Context) error { return nil }

func (a *stubAdapter) SignTransaction(_ context.Context, _ []byte) (*provider.SignedArtifact, error) {
	return &provider.SignedArtifact{}, nil
}

func (a *stubAdapter) SignMessage(_ context.Context, _ []byte) ([]byte, error) {
	return []byte("sig"), nil
}

func (a *stubAdapter) Installed(_ context.Context) bool { return true }

func TestRegistryLazyLoadAndCache(t *testing.T) {
	registry := provider.NewRegistry()

	loads := 0
	require.NoError(t, registry.Register("stub", func() (provider.Adapter, error) {
		loads++
		return &stubAdapter{id: "stub"}, nil
	}))

	assert.Zero(t, loads, "factory must not run before first resolve")

	first, err := registry.Resolve("stub")
	require.NoError(t, err)
	second, err := registry.Resolve("stub")
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Same(t, first, second)
}

func TestRegistryEvictReloads(t *testing.T) {
	registry := provider.NewRegistry()

	loads := 0
	require.NoError(t, registry.Register("stub", func() (provider.Adapter, error) {
		loads++
		return &stubAdapter{id: "stub"}, nil
	}))

	_, err := registry.Resolve("stub")
	require.NoError(t, err)

	registry.Evict("stub")

	_, err = registry.Resolve("stub")
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := provider.NewRegistry()

	_, err := registry.Resolve("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrUnknownProvider))
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	registry := provider.NewRegistry()

	factory := func() (provider.Adapter, error) { return &stubAdapter{id: "stub"}, nil }
	require.NoError(t, registry.Register("stub", factory))

	err := registry.Register("stub", factory)
	assert.True(t, errors.Is(err, provider.ErrAlreadyRegistered))
}

func TestRegistryKnown(t *testing.T) {
	registry := provider.NewRegistry()
	factory := func() (provider.Adapter, error) { return &stubAdapter{}, nil }

	require.NoError(t, registry.Register("zeta", factory))
	require.NoError(t, registry.Register("alpha", factory))

	assert.Equal(t, []string{"alpha", "zeta"}, registry.Known())
}
