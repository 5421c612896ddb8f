package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/config"
	"github.com/portara/walletcore/internal/test"
)

func TestGetVersion(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/version", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		require.Equal(t, config.GetFormattedBuildArgs(), res.Body.String())
	})
}
