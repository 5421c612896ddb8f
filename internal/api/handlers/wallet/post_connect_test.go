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

func TestPostConnect(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		payload := types.PostConnectPayload{ProviderID: swag.String(test.TestProviderID)}

		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/connect", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.ConnectionResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "connected", swag.StringValue(response.State))
		assert.Equal(t, test.TestProviderID, response.ProviderID)
		assert.Equal(t, test.TestProviderAddress, response.Address)
		assert.NotNil(t, response.ConnectedAt)
		assert.NotNil(t, response.ExpiresAt)
	})
}

func TestPostConnectUnknownProvider(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		payload := types.PostConnectPayload{ProviderID: swag.String("does-not-exist")}

		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/connect", payload, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var response types.PublicHTTPError
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "invalid_request", response.Detail)
	})
}

func TestPostConnectMissingProviderID(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/connect", test.GenericPayload{}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
