package util

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Validatable is implemented by request payloads that can validate themselves.
type Validatable interface {
	Validate() error
}

// BindAndValidateBody binds the request body to the given payload and runs its
// validation, returning an echo HTTPError on failure.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	if err := c.Bind(v); err != nil {
		log.Debug().Err(err).Msg("Failed to bind request body")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := v.Validate(); err != nil {
		log.Debug().Err(err).Msg("Request body validation failed")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

// ValidateAndReturn validates the response payload if it can validate itself
// and writes it as JSON. A response failing its own validation is a bug.
func ValidateAndReturn(c echo.Context, code int, v interface{}) error {
	if vv, ok := v.(Validatable); ok {
		if err := vv.Validate(); err != nil {
			log.Error().Err(err).Msg("Response payload validation failed")
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}

	return c.JSON(code, v)
}
