package common

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/config"
)

func GetVersionRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/version", getVersionHandler(s))
}

func getVersionHandler(_ *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, config.GetFormattedBuildArgs())
	}
}
