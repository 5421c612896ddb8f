package multisig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/wallet/multisig"
)

func TestPolicyDraftRoster(t *testing.T) {
	draft, err := multisig.NewPolicyDraft("owner", 2)
	require.NoError(t, err)

	require.NoError(t, draft.AddApprover("owner", "alice"))
	require.NoError(t, draft.AddApprover("owner", "bob"))

	policy := draft.Policy()
	assert.Equal(t, 2, policy.Threshold)
	assert.Equal(t, []string{"alice", "bob", "owner"}, policy.SignerSet)
}

func TestPolicyDraftOwnerOnly(t *testing.T) {
	draft, err := multisig.NewPolicyDraft("owner", 1)
	require.NoError(t, err)
	require.NoError(t, draft.AddApprover("owner", "alice"))

	requireInvalidRequest(t, draft.AddApprover("alice", "mallory"))
	requireInvalidRequest(t, draft.RemoveApprover("alice", "alice"))
	requireInvalidRequest(t, draft.SetThreshold("alice", 1))
}

func TestPolicyDraftRosterFloor(t *testing.T) {
	draft, err := multisig.NewPolicyDraft("owner", 1)
	require.NoError(t, err)
	require.NoError(t, draft.AddApprover("owner", "alice"))

	// removing the last approver is refused
	requireInvalidRequest(t, draft.RemoveApprover("owner", "alice"))

	require.NoError(t, draft.AddApprover("owner", "bob"))
	require.NoError(t, draft.RemoveApprover("owner", "alice"))
	requireInvalidRequest(t, draft.RemoveApprover("owner", "bob"))
}

func TestPolicyDraftThresholdBound(t *testing.T) {
	draft, err := multisig.NewPolicyDraft("owner", 1)
	require.NoError(t, err)
	require.NoError(t, draft.AddApprover("owner", "alice"))

	// owner counts as a signer, so two approvers allow threshold 3 at most
	require.NoError(t, draft.AddApprover("owner", "bob"))
	require.NoError(t, draft.SetThreshold("owner", 3))
	requireInvalidRequest(t, draft.SetThreshold("owner", 4))
	requireInvalidRequest(t, draft.SetThreshold("owner", 0))

	// a removal that would strand the threshold is refused
	requireInvalidRequest(t, draft.RemoveApprover("owner", "bob"))
}

func TestPolicyDraftDuplicateApprover(t *testing.T) {
	draft, err := multisig.NewPolicyDraft("owner", 1)
	require.NoError(t, err)

	require.NoError(t, draft.AddApprover("owner", "alice"))
	requireInvalidRequest(t, draft.AddApprover("owner", "alice"))
	requireInvalidRequest(t, draft.AddApprover("owner", "owner"))
	requireInvalidRequest(t, draft.AddApprover("owner", ""))

	_, err = multisig.NewPolicyDraft("", 1)
	requireInvalidRequest(t, err)
	_, err = multisig.NewPolicyDraft("owner", 0)
	requireInvalidRequest(t, err)
}
