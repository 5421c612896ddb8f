package common

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/util"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// getHealthyHandler performs health checks guarded by the management secret.
// It must not be exposed publicly.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromContext(c.Request().Context())

		secret := c.QueryParam("mgmt-secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(s.Config.Management.Secret)) != 1 {
			return echo.ErrUnauthorized
		}

		if !s.Ready() {
			log.Warn().Msg("Health check failed, server not ready")
			return c.String(statusNotReady, "Not healthy.")
		}

		return c.String(http.StatusOK, "Healthy.")
	}
}
