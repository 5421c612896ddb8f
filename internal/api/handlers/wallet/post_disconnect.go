package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
)

func PostDisconnectRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/disconnect", postDisconnectHandler(s))
}

// postDisconnectHandler tears down the current session. Disconnecting without
// a session is a no-op and still succeeds.
func postDisconnectHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.Wallet.Disconnect(c.Request().Context()); err != nil {
			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
}
