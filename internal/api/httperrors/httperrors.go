package httperrors

import (
	"fmt"
	"net/http"

	"github.com/go-openapi/swag"

	"github.com/portara/walletcore/internal/types"
)

// HTTPError wraps the public error envelope so handlers can return it as a
// regular error. The echo error handler serializes it.
type HTTPError struct {
	types.PublicHTTPError
	Internal       error
	AdditionalData map[string]interface{}
}

// NewHTTPError builds a plain error with the given status, type and title.
func NewHTTPError(code int, errorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  swag.Int64(int64(code)),
			Type:  swag.String(errorType),
			Title: swag.String(title),
		},
	}
}

// NewHTTPErrorWithDetail additionally carries a public detail string.
func NewHTTPErrorWithDetail(code int, errorType, title, detail string) *HTTPError {
	e := NewHTTPError(code, errorType, title)
	e.Detail = detail
	return e
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError %d (%s): %s", swag.Int64Value(e.Code), swag.StringValue(e.Type), swag.StringValue(e.Title))
}

// HTTPValidationError extends HTTPError with per-field details.
type HTTPValidationError struct {
	types.PublicHTTPValidationError
	Internal error
}

// NewHTTPValidationError builds a validation error with field details.
func NewHTTPValidationError(code int, errorType, title string, validationErrors []*types.HTTPValidationErrorDetail) *HTTPValidationError {
	return &HTTPValidationError{
		PublicHTTPValidationError: types.PublicHTTPValidationError{
			PublicHTTPError: types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  swag.String(errorType),
				Title: swag.String(title),
			},
			ValidationErrors: validationErrors,
		},
	}
}

func (e *HTTPValidationError) Error() string {
	return fmt.Sprintf("HTTPValidationError %d (%s): %s (%d fields)",
		swag.Int64Value(e.Code), swag.StringValue(e.Type), swag.StringValue(e.Title), len(e.ValidationErrors))
}

// NewHTTPErrorFromError exposes the raw error message, used only when the
// environment allows internal details to leave the server.
func NewHTTPErrorFromError(code int, err error) *HTTPError {
	return NewHTTPError(code, types.PublicHTTPErrorTypeGeneric, err.Error())
}

// HTTPErrorFromEcho converts an echo.HTTPError-shaped code and message.
func HTTPErrorFromEcho(code int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return NewHTTPError(code, types.PublicHTTPErrorTypeGeneric, message)
}
