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

func TestGetConnectionDisconnected(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/wallet/connection", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.ConnectionResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "disconnected", swag.StringValue(response.State))
		assert.Empty(t, response.Address)
	})
}

func TestGetConnectionAfterConnect(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		payload := types.PostConnectPayload{ProviderID: swag.String(test.TestProviderID)}
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/connect", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/api/v1/wallet/connection", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.ConnectionResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "connected", swag.StringValue(response.State))
		assert.Equal(t, test.TestProviderAddress, response.Address)
	})
}

func TestPostDisconnect(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		payload := types.PostConnectPayload{ProviderID: swag.String(test.TestProviderID)}
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/connect", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/wallet/disconnect", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

		// disconnecting without a session still succeeds
		res = test.PerformRequest(t, s, "POST", "/api/v1/wallet/disconnect", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/api/v1/wallet/connection", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.ConnectionResponse
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, "disconnected", swag.StringValue(response.State))
	})
}
