package transactions_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/test"
	"github.com/portara/walletcore/internal/types"
)

func TestPostCancelTransaction(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		id := prepareTransaction(t, s)

		payload := types.PostCancelTransactionPayload{TransactionID: swag.String(id)}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/cancel", payload, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", fmt.Sprintf("/api/v1/transactions/%s", id), nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var record types.TransactionRecordResponse
		test.ParseResponseAndValidate(t, res, &record)
		assert.Equal(t, "cancelled", swag.StringValue(record.Status))
	})
}

func TestPostCancelTransactionTwice(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		id := prepareTransaction(t, s)

		payload := types.PostCancelTransactionPayload{TransactionID: swag.String(id)}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/cancel", payload, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

		// terminal records cannot transition again
		res = test.PerformRequest(t, s, "POST", "/api/v1/transactions/cancel", payload, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostCancelTransactionUnknown(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		payload := types.PostCancelTransactionPayload{TransactionID: swag.String("unknown")}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/cancel", payload, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
