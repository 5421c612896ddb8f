package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
)

func DeleteMultiSigPolicyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.DELETE("/multisig/policy", deleteMultiSigPolicyHandler(s))
}

// deleteMultiSigPolicyHandler reverts to direct single-signer signing.
// Deleting an unset policy is a no-op and still succeeds.
func deleteMultiSigPolicyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.Wallet.ClearMultiSigPolicy()

		return c.NoContent(http.StatusNoContent)
	}
}
