package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/httperrors"
	"github.com/portara/walletcore/internal/util"
)

func GetMultiSigPolicyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/multisig/policy", getMultiSigPolicyHandler(s))
}

func getMultiSigPolicyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		policy, ok := s.Wallet.GetMultiSigPolicy()
		if !ok {
			return httperrors.ErrNotFoundPolicy
		}

		return util.ValidateAndReturn(c, http.StatusOK, policyResponse(policy))
	}
}
