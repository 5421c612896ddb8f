package wallet_test

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

func connectAsTestProvider(t *testing.T, s *api.Server) {
	t.Helper()

	payload := types.PostConnectPayload{ProviderID: swag.String(test.TestProviderID)}
	res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/connect", payload, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode)
}

func configurePolicy(t *testing.T, s *api.Server, owner string, threshold int64) types.MultiSigPolicyResponse {
	t.Helper()

	payload := types.PutMultiSigPolicyPayload{Owner: swag.String(owner), Threshold: swag.Int64(threshold)}
	res := test.PerformRequest(t, s, "PUT", "/api/v1/wallet/multisig/policy", payload, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode)

	var response types.MultiSigPolicyResponse
	test.ParseResponseAndValidate(t, res, &response)
	return response
}

func TestPutMultiSigPolicy(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		response := configurePolicy(t, s, test.TestProviderAddress, 1)
		assert.Equal(t, int64(1), swag.Int64Value(response.Threshold))
		assert.Equal(t, []string{test.TestProviderAddress}, response.SignerSet)

		res := test.PerformRequest(t, s, "GET", "/api/v1/wallet/multisig/policy", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}

func TestGetMultiSigPolicyNotConfigured(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/wallet/multisig/policy", nil, nil)
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)
	})
}

func TestPutMultiSigPolicyMissingFields(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "PUT", "/api/v1/wallet/multisig/policy", test.GenericPayload{}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}

func TestPostMultiSigApproverOwnerOnly(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		configurePolicy(t, s, test.TestProviderAddress, 1)

		payload := types.MultiSigApproverPayload{
			Actor:    swag.String("0xnotowner"),
			Approver: swag.String("0xapprover"),
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/multisig/policy/approvers", payload, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var response types.PublicHTTPError
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, "invalid_request", response.Detail)
	})
}

// The full administration round trip: configure a policy, grow the roster,
// raise the threshold, and observe a sign request open a collection instead
// of returning a signed artifact.
func TestMultiSigPolicyGatesSigning(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		connectAsTestProvider(t, s)
		configurePolicy(t, s, test.TestProviderAddress, 1)

		approverPayload := types.MultiSigApproverPayload{
			Actor:    swag.String(test.TestProviderAddress),
			Approver: swag.String("0xapprover"),
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/multisig/policy/approvers", approverPayload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		thresholdPayload := types.PutMultiSigThresholdPayload{
			Actor:     swag.String(test.TestProviderAddress),
			Threshold: swag.Int64(2),
		}
		res = test.PerformRequest(t, s, "PUT", "/api/v1/wallet/multisig/policy/threshold", thresholdPayload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var policy types.MultiSigPolicyResponse
		test.ParseResponseAndValidate(t, res, &policy)
		assert.Equal(t, int64(2), swag.Int64Value(policy.Threshold))
		assert.Equal(t, []string{"0xapprover", test.TestProviderAddress}, policy.SignerSet)

		intent := types.TransactionIntentPayload{
			ChainID:              swag.Int64(1),
			To:                   swag.String("0x52908400098527886E0F7030069857D2E4169EE7"),
			Amount:               swag.String("1000000000000000000"),
			GasLimit:             21000,
			MaxFeePerGas:         "30000000000",
			MaxPriorityFeePerGas: "1000000000",
			Nonce:                swag.Int64(7),
		}
		res = test.PerformRequest(t, s, "POST", "/api/v1/transactions", intent, nil)
		require.Equal(t, http.StatusCreated, res.Result().StatusCode)

		var record types.TransactionRecordResponse
		test.ParseResponseAndValidate(t, res, &record)

		signPayload := types.PostSignTransactionPayload{TransactionID: record.ID}
		res = test.PerformRequest(t, s, "POST", "/api/v1/transactions/sign", signPayload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var signResponse types.SignTransactionResponse
		test.ParseResponseAndValidate(t, res, &signResponse)

		assert.Equal(t, "pending", swag.StringValue(signResponse.Status))
		assert.Equal(t, int64(1), signResponse.Collected)
		assert.Equal(t, int64(2), signResponse.Required)
		assert.Empty(t, signResponse.Signed)

		res = test.PerformRequest(t, s, "GET", "/api/v1/wallet/multisig/pending", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var pending types.MultiSigPendingResponse
		test.ParseResponseAndValidate(t, res, &pending)
		assert.Contains(t, pending.Fingerprints, swag.StringValue(record.Fingerprint))

		res = test.PerformRequest(t, s, "GET", "/api/v1/wallet/multisig/"+swag.StringValue(record.Fingerprint), nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}

func TestDeleteMultiSigPolicy(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		configurePolicy(t, s, test.TestProviderAddress, 1)

		res := test.PerformRequest(t, s, "DELETE", "/api/v1/wallet/multisig/policy", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/api/v1/wallet/multisig/policy", nil, nil)
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)
	})
}
