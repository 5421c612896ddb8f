package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/util"
)

// RequestLogger attaches a request-scoped zerolog logger to the context and
// logs one line per request at the configured level.
func RequestLogger(s *api.Server) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			logger := log.With().
				Str("request_id", requestID).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()

			c.SetRequest(req.WithContext(util.WithLogger(req.Context(), logger)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.WithLevel(s.Config.Logger.RequestLevel).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("Handled request")

			return err
		}
	}
}
