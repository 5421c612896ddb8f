package wallet_test

import (
	"crypto/sha256"
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/test"
	"github.com/portara/walletcore/internal/types"
)

func TestPostSignMessage(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		connectPayload := types.PostConnectPayload{ProviderID: swag.String(test.TestProviderID)}
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/connect", connectPayload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		payload := types.PostSignMessagePayload{Message: swag.String("hello")}
		res = test.PerformRequest(t, s, "POST", "/api/v1/wallet/sign-message", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.SignMessageResponse
		test.ParseResponseAndValidate(t, res, &response)

		expected := sha256.Sum256([]byte("hello"))
		assert.Equal(t, expected[:], []byte(response.Signature))
	})
}

func TestPostSignMessageWithoutSession(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		payload := types.PostSignMessagePayload{Message: swag.String("hello")}
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/sign-message", payload, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var response types.PublicHTTPError
		test.ParseResponseAndValidate(t, res, &response)
		assert.Equal(t, "invalid_request", response.Detail)
	})
}

func TestPostSignMessageMissingMessage(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/wallet/sign-message", test.GenericPayload{}, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
