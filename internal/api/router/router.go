package router

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/handlers"
)

// Init attaches the echo instance, middleware stack and all routes to s.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.HTTPErrorHandler = HTTPErrorHandler(s)

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(middleware.Recover())
	} else {
		log.Warn().Msg("Disabling recover middleware due to environment config")
	}

	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(middleware.RequestID())
	} else {
		log.Warn().Msg("Disabling request ID middleware due to environment config")
	}

	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(RequestLogger(s))
	} else {
		log.Warn().Msg("Disabling logger middleware due to environment config")
	}

	if s.Config.Echo.EnableMetricsMiddleware {
		s.Echo.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Registerer: s.Metrics.Registry(),
			Subsystem:  "http",
		}))
	} else {
		log.Warn().Msg("Disabling metrics middleware due to environment config")
	}

	s.Router = &api.Router{
		Routes: nil, // will be populated by handlers.AttachAllRoutes(s)

		Root:        s.Echo.Group(""),
		Management:  s.Echo.Group("/-"),
		APIV1Wallet: s.Echo.Group("/api/v1/wallet"),
		APIV1Txn:    s.Echo.Group("/api/v1/transactions"),
	}

	s.Router.Root.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	handlers.AttachAllRoutes(s)
}
