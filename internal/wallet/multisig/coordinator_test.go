package multisig_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
	"github.com/portara/walletcore/internal/wallet/multisig"
)

func newTestCoordinator(now func() time.Time) *multisig.Coordinator {
	opts := []multisig.Option{}
	if now != nil {
		opts = append(opts, multisig.WithNow(now))
	}
	return multisig.NewCoordinator(multisig.Config{TTL: time.Hour}, events.NewBus(), opts...)
}

func requireInvalidRequest(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	var classified *errclass.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, errclass.KindInvalidRequest, classified.Kind())
}

func TestThresholdTwoOfThree(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y", "z"}}

	result, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig-x"), policy)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusPending, result.Status)
	assert.Equal(t, 1, result.Collected)
	assert.Equal(t, 2, result.Required)
	assert.Nil(t, result.Artifact)

	result, err = coordinator.SubmitSignature(ctx, "0xfp", "y", []byte("sig-y"), policy)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusSigned, result.Status)
	require.NotNil(t, result.Artifact)
	assert.Equal(t, "0xfp", result.Artifact.Fingerprint)
	assert.Len(t, result.Artifact.Signatures, 2)
	assert.Equal(t, []byte("sig-xsig-y"), result.Artifact.Combined)

	// the record is finalized, a third signer is turned away
	_, err = coordinator.SubmitSignature(ctx, "0xfp", "z", []byte("sig-z"), policy)
	requireInvalidRequest(t, err)
}

func TestDuplicateResubmissionReplacesSlot(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	result, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("first"), policy)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Collected)

	// same signer again: slot replaced, count unchanged, no finalization
	result, err = coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("second"), policy)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusPending, result.Status)
	assert.Equal(t, 1, result.Collected)

	result, err = coordinator.SubmitSignature(ctx, "0xfp", "y", []byte("sig-y"), policy)
	require.NoError(t, err)
	require.Equal(t, multisig.StatusSigned, result.Status)
	assert.Equal(t, []byte("second"), result.Artifact.Signatures[0].Signature)
}

func TestNonMemberRejected(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	_, err := coordinator.SubmitSignature(ctx, "0xfp", "intruder", []byte("sig"), policy)
	requireInvalidRequest(t, err)

	// the record was still created by the first submission attempt, the
	// rejection happens on membership, not existence
	status, ok := coordinator.GetStatus("0xfp")
	require.True(t, ok)
	assert.Equal(t, 0, status.Collected)
}

func TestInvalidPolicyRejected(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)

	_, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig"), multisig.Policy{Threshold: 0, SignerSet: []string{"x"}})
	requireInvalidRequest(t, err)

	_, err = coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig"), multisig.Policy{Threshold: 3, SignerSet: []string{"x", "y"}})
	requireInvalidRequest(t, err)

	assert.Empty(t, coordinator.ListPending())
}

func TestThresholdExactnessConcurrent(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)

	signers := []string{"a", "b", "c", "d", "e"}
	policy := multisig.Policy{Threshold: 3, SignerSet: signers}

	var wg sync.WaitGroup
	var mu sync.Mutex
	signed := 0

	// every signer submits twice, concurrently; exactly one submission may
	// observe the finalization
	for _, signer := range signers {
		for round := 0; round < 2; round++ {
			wg.Add(1)
			go func(signer string, round int) {
				defer wg.Done()
				result, err := coordinator.SubmitSignature(ctx, "0xfp", signer, []byte(fmt.Sprintf("%s-%d", signer, round)), policy)
				if err != nil {
					return
				}
				if result.Status == multisig.StatusSigned {
					mu.Lock()
					signed++
					mu.Unlock()
				}
			}(signer, round)
		}
	}
	wg.Wait()

	assert.Equal(t, 1, signed, "threshold must finalize exactly once")

	status, ok := coordinator.GetStatus("0xfp")
	require.True(t, ok)
	assert.Equal(t, "finalized", status.State)
	assert.Equal(t, 3, status.Collected)
}

func TestCancelStopsCollection(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	_, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig"), policy)
	require.NoError(t, err)

	require.NoError(t, coordinator.Cancel(ctx, "0xfp"))
	require.NoError(t, coordinator.Cancel(ctx, "0xfp"), "cancel is idempotent")
	require.NoError(t, coordinator.Cancel(ctx, "0xother"), "cancelling an unknown fingerprint is a no-op")

	_, err = coordinator.SubmitSignature(ctx, "0xfp", "y", []byte("sig"), policy)
	requireInvalidRequest(t, err)

	assert.Empty(t, coordinator.ListPending())
}

func TestCancelFinalizedRejected(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)
	policy := multisig.Policy{Threshold: 1, SignerSet: []string{"x"}}

	result, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig"), policy)
	require.NoError(t, err)
	require.Equal(t, multisig.StatusSigned, result.Status)

	requireInvalidRequest(t, coordinator.Cancel(ctx, "0xfp"))
}

func TestExpiryRejectsLateSignatures(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	coordinator := multisig.NewCoordinator(multisig.Config{TTL: time.Hour}, events.NewBus(), multisig.WithNow(clock))
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	_, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig"), policy)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	_, err = coordinator.SubmitSignature(ctx, "0xfp", "y", []byte("sig"), policy)
	requireInvalidRequest(t, err)

	assert.Equal(t, 0, coordinator.SweepExpired(ctx), "lazy expiry already marked the record")
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	coordinator := multisig.NewCoordinator(multisig.Config{TTL: time.Hour}, events.NewBus(), multisig.WithNow(clock))
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	_, err := coordinator.SubmitSignature(ctx, "0xone", "x", []byte("sig"), policy)
	require.NoError(t, err)
	_, err = coordinator.SubmitSignature(ctx, "0xtwo", "x", []byte("sig"), policy)
	require.NoError(t, err)

	assert.Equal(t, 0, coordinator.SweepExpired(ctx))
	assert.Len(t, coordinator.ListPending(), 2)

	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	assert.Equal(t, 2, coordinator.SweepExpired(ctx))
	assert.Empty(t, coordinator.ListPending())
}

func TestListPendingAndStatus(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	_, ok := coordinator.GetStatus("0xmissing")
	assert.False(t, ok)
	assert.Empty(t, coordinator.ListPending())

	_, err := coordinator.SubmitSignature(ctx, "0xbbb", "x", []byte("sig"), policy)
	require.NoError(t, err)
	_, err = coordinator.SubmitSignature(ctx, "0xaaa", "x", []byte("sig"), policy)
	require.NoError(t, err)

	assert.Equal(t, []string{"0xaaa", "0xbbb"}, coordinator.ListPending())

	status, ok := coordinator.GetStatus("0xaaa")
	require.True(t, ok)
	assert.Equal(t, 1, status.Collected)
	assert.Equal(t, 2, status.Required)
	assert.Equal(t, "collecting", status.State)
}

func TestProgressEvents(t *testing.T) {
	ctx := context.Background()

	bus := events.NewBus()
	var progress []int
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.TypeMultiSigProgress {
			progress = append(progress, e.CollectedSignatures)
		}
	})

	coordinator := multisig.NewCoordinator(multisig.Config{TTL: time.Hour}, bus)
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	_, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig"), policy)
	require.NoError(t, err)
	_, err = coordinator.SubmitSignature(ctx, "0xfp", "y", []byte("sig"), policy)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, progress)
}

func TestResetDropsRecords(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(nil)
	policy := multisig.Policy{Threshold: 2, SignerSet: []string{"x", "y"}}

	_, err := coordinator.SubmitSignature(ctx, "0xfp", "x", []byte("sig"), policy)
	require.NoError(t, err)

	coordinator.Reset()

	assert.Empty(t, coordinator.ListPending())
	_, ok := coordinator.GetStatus("0xfp")
	assert.False(t, ok)
}
