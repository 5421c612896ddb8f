package transactions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/httperrors"
	"github.com/portara/walletcore/internal/util"
)

func GetTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Txn.GET("/:id", getTransactionHandler(s))
}

func getTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		record, ok := s.Wallet.GetTransaction(c.Param("id"))
		if !ok {
			return httperrors.ErrNotFoundTransaction
		}

		return util.ValidateAndReturn(c, http.StatusOK, recordResponse(record))
	}
}
