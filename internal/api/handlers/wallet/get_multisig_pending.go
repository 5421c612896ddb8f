package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func GetMultiSigPendingRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/multisig/pending", getMultiSigPendingHandler(s))
}

func getMultiSigPendingHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return util.ValidateAndReturn(c, http.StatusOK, &types.MultiSigPendingResponse{
			Fingerprints: s.Wallet.ListPendingMultiSigTransactions(),
		})
	}
}
