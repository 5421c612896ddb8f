package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/wallet/ledger"
)

func TestNewEVMBroadcasterRequiresURLs(t *testing.T) {
	_, err := ledger.NewEVMBroadcaster(nil)
	require.Error(t, err)
}

func TestSubmitRejectsMalformedArtifact(t *testing.T) {
	// http endpoints are dialed lazily, no node needs to be listening
	broadcaster, err := ledger.NewEVMBroadcaster([]string{"http://127.0.0.1:1"})
	require.NoError(t, err)
	defer broadcaster.Close()

	_, err = broadcaster.Submit(context.Background(), []byte("not a transaction"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode signed transaction")
}
