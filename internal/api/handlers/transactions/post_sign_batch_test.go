package transactions_test

import (
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/test"
	"github.com/portara/walletcore/internal/types"
)

func TestPostSignBatch(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		connectTestProvider(t, s)

		first := validIntentPayload()
		second := validIntentPayload()
		second.Nonce = swag.Int64(8)

		payload := types.PostSignTransactionBatchPayload{
			Intents: []*types.TransactionIntentPayload{&first, &second},
		}

		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/sign-batch", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.SignTransactionBatchResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, int64(2), response.TotalSigned)
		assert.Equal(t, int64(0), response.TotalFailed)
		require.Len(t, response.Records, 2)
		for _, record := range response.Records {
			assert.Equal(t, "signing", swag.StringValue(record.Status))
		}
	})
}

func TestPostSignBatchEmpty(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		payload := types.PostSignTransactionBatchPayload{}

		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/sign-batch", payload, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostSignBatchInvalidItem(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		first := validIntentPayload()
		second := validIntentPayload()
		second.Amount = swag.String("")

		payload := types.PostSignTransactionBatchPayload{
			Intents: []*types.TransactionIntentPayload{&first, &second},
		}

		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/sign-batch", payload, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
