package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/util"
)

func GetConnectionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/connection", getConnectionHandler(s))
}

func getConnectionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, _ := s.Wallet.CurrentSession()

		return util.ValidateAndReturn(c, http.StatusOK, connectionResponse(s.Wallet.GetConnectionState(), session))
	}
}
