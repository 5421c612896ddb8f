package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/httperrors"
	"github.com/portara/walletcore/internal/wallet/errclass"
)

// HTTPErrorHandler translates every error a handler returns into the public
// error envelope. Classified wallet errors map to their fixed per-kind
// message and status; raw causes stay in the logs.
func HTTPErrorHandler(s *api.Server) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var payload interface{}
		code := http.StatusInternalServerError

		switch e := err.(type) {
		case *httperrors.HTTPValidationError:
			code = int(*e.Code)
			payload = e.PublicHTTPValidationError
		case *httperrors.HTTPError:
			code = int(*e.Code)
			payload = e.PublicHTTPError
			if e.Internal != nil {
				log.Debug().Err(e.Internal).Int("status", code).Msg("Returning classified error")
			}
		case *errclass.Error:
			httpErr := httperrors.FromClassified(e)
			code = int(*httpErr.Code)
			payload = httpErr.PublicHTTPError
			log.Debug().AnErr("cause", e.Cause()).Str("kind", string(e.Kind())).Int("status", code).Msg("Returning classified error")
		case *echo.HTTPError:
			code = e.Code
			message, ok := e.Message.(string)
			if !ok {
				message = http.StatusText(code)
			}
			payload = httperrors.HTTPErrorFromEcho(code, message).PublicHTTPError
		default:
			if s.Config.Echo.HideInternalServerErrorDetails {
				payload = httperrors.HTTPErrorFromEcho(code, "").PublicHTTPError
			} else {
				payload = httperrors.NewHTTPErrorFromError(code, err).PublicHTTPError
			}
			log.Error().Err(err).Msg("Unhandled error in request")
		}

		if writeErr := c.JSON(code, payload); writeErr != nil {
			log.Error().Err(writeErr).Msg("Failed to write error response")
		}
	}
}
