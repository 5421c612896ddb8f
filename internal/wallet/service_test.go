package wallet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/wallet"
	"github.com/portara/walletcore/internal/wallet/connection"
	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
	"github.com/portara/walletcore/internal/wallet/ledger"
	"github.com/portara/walletcore/internal/wallet/multisig"
	"github.com/portara/walletcore/internal/wallet/pipeline"
	"github.com/portara/walletcore/internal/wallet/provider"
)

type facadeAdapter struct{}

func (facadeAdapter) ID() string { return "stub" }

func (facadeAdapter) Connect(_ context.Context, _ provider.Metadata) (*provider.Credentials, error) {
	return &provider.Credentials{Address: "0xowner", PublicKey: "0xpub", ChainID: 1}, nil
}

func (facadeAdapter) Disconnect(_ context.Context) error { return nil }

func (facadeAdapter) SignTransaction(_ context.Context, payload []byte) (*provider.SignedArtifact, error) {
	return &provider.SignedArtifact{Raw: payload, Hash: "0xhash", Signer: "0xowner"}, nil
}

func (facadeAdapter) SignMessage(_ context.Context, _ []byte) ([]byte, error) {
	return []byte("message-sig"), nil
}

func (facadeAdapter) Installed(_ context.Context) bool { return true }

type nullBroadcaster struct{}

func (nullBroadcaster) Submit(_ context.Context, _ []byte) (*ledger.Receipt, error) {
	return &ledger.Receipt{Accepted: true, ID: "0xtx"}, nil
}

func newTestService(t *testing.T) wallet.Service {
	t.Helper()

	registry := provider.NewRegistry()
	require.NoError(t, registry.Register("stub", func() (provider.Adapter, error) { return facadeAdapter{}, nil }))

	bus := events.NewBus()
	audit := errclass.NewAuditLog(100)
	manager := connection.NewManager(connection.Config{
		SessionTTL:       time.Hour,
		CacheTTL:         time.Minute,
		HandshakeTimeout: time.Second,
	}, registry, connection.NewMemoryStore(), bus, audit)
	coordinator := multisig.NewCoordinator(multisig.Config{TTL: time.Hour}, bus)
	p := pipeline.NewPipeline(pipeline.Config{}, manager, registry, coordinator, nullBroadcaster{}, errclass.NewRetrier(), bus)

	service, err := wallet.NewService(time.Minute, registry, manager, coordinator, p, bus, audit)
	require.NoError(t, err)
	return service
}

func testIntent() pipeline.Intent {
	return pipeline.Intent{
		ChainID:              1,
		To:                   "0x52908400098527886E0F7030069857D2E4169EE7",
		Amount:               "1000",
		GasLimit:             21000,
		MaxFeePerGas:         "30000000000",
		MaxPriorityFeePerGas: "1000000000",
		Nonce:                1,
	}
}

func TestServiceEndToEnd(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	require.NoError(t, service.Start(ctx))
	defer service.Stop()

	assert.Equal(t, connection.StateDisconnected, service.GetConnectionState())

	session, err := service.Connect(ctx, "stub")
	require.NoError(t, err)
	assert.Equal(t, "0xowner", session.Address)
	assert.Equal(t, connection.StateConnected, service.GetConnectionState())

	record, err := service.PrepareTransaction(ctx, testIntent())
	require.NoError(t, err)

	result, err := service.SignTransaction(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, pipeline.SignStatusSigned, result.Status)

	ledgerID, err := service.BroadcastTransaction(ctx, record.ID, result.Signed)
	require.NoError(t, err)
	assert.Equal(t, "0xtx", ledgerID)

	signature, err := service.SignMessage(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("message-sig"), signature)

	require.NoError(t, service.Disconnect(ctx))
	assert.Equal(t, connection.StateDisconnected, service.GetConnectionState())
}

func TestServicePolicyAdministration(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	_, err := service.Connect(ctx, "stub")
	require.NoError(t, err)

	// roster mutations require a configured policy
	err = service.AddMultiSigApprover("0xowner", "0xapprover")
	requireInvalidRequest(t, err)
	_, ok := service.GetMultiSigPolicy()
	assert.False(t, ok)

	require.NoError(t, service.ConfigureMultiSigPolicy("0xowner", 1))
	require.NoError(t, service.AddMultiSigApprover("0xowner", "0xapprover"))
	require.NoError(t, service.SetMultiSigThreshold("0xowner", 2))

	// only the owner may mutate the roster
	requireInvalidRequest(t, service.AddMultiSigApprover("0xapprover", "0xother"))

	policy, ok := service.GetMultiSigPolicy()
	require.True(t, ok)
	assert.Equal(t, 2, policy.Threshold)
	assert.Equal(t, []string{"0xapprover", "0xowner"}, policy.SignerSet)

	// with the policy active a single signature only opens a collection
	record, err := service.PrepareTransaction(ctx, testIntent())
	require.NoError(t, err)

	result, err := service.SignTransaction(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SignStatusPending, result.Status)
	assert.Equal(t, 1, result.Collected)
	assert.Equal(t, 2, result.Required)
	assert.Contains(t, service.ListPendingMultiSigTransactions(), record.Fingerprint)

	// clearing the policy reverts new records to direct signing
	service.ClearMultiSigPolicy()
	_, ok = service.GetMultiSigPolicy()
	assert.False(t, ok)

	next := testIntent()
	next.Nonce = 2
	direct, err := service.PrepareTransaction(ctx, next)
	require.NoError(t, err)
	directResult, err := service.SignTransaction(ctx, direct.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SignStatusSigned, directResult.Status)
}

func requireInvalidRequest(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	var classified *errclass.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, errclass.KindInvalidRequest, classified.Kind())
}

func TestServiceSignMessageWithoutSession(t *testing.T) {
	service := newTestService(t)

	_, err := service.SignMessage(context.Background(), []byte("hello"))
	require.Error(t, err)

	var classified *errclass.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, errclass.KindInvalidRequest, classified.Kind())
}

func TestServiceReset(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	_, err := service.Connect(ctx, "stub")
	require.NoError(t, err)

	service.Reset(ctx)

	assert.Equal(t, connection.StateDisconnected, service.GetConnectionState())
	assert.Empty(t, service.ListPendingMultiSigTransactions())
	assert.Equal(t, 0, service.ErrorStats().Total)
}

func TestServiceStartTwice(t *testing.T) {
	service := newTestService(t)

	require.NoError(t, service.Start(context.Background()))
	require.Error(t, service.Start(context.Background()))
	service.Stop()
	service.Stop()
}
