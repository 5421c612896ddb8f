package httperrors

import (
	"net/http"

	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/wallet/errclass"
)

// statusForKind maps the wallet error taxonomy to HTTP status codes.
var statusForKind = map[errclass.Kind]int{
	errclass.KindUserRejected:        http.StatusBadRequest,
	errclass.KindInvalidRequest:      http.StatusBadRequest,
	errclass.KindNetworkError:        http.StatusBadGateway,
	errclass.KindTimeout:             http.StatusGatewayTimeout,
	errclass.KindHardwareError:       http.StatusBadGateway,
	errclass.KindInsufficientFunds:   http.StatusBadRequest,
	errclass.KindNonceConflict:       http.StatusConflict,
	errclass.KindGasEstimationFailed: http.StatusUnprocessableEntity,
	errclass.KindSimulationFailed:    http.StatusUnprocessableEntity,
	errclass.KindWalletNotInstalled:  http.StatusPreconditionFailed,
	errclass.KindUnknown:             http.StatusInternalServerError,
}

// FromClassified converts a classified wallet error into the public error
// envelope. The title is the kind's fixed user-facing message; the raw cause
// never leaves the server.
func FromClassified(err *errclass.Error) *HTTPError {
	code, ok := statusForKind[err.Kind()]
	if !ok {
		code = http.StatusInternalServerError
	}

	e := NewHTTPErrorWithDetail(code, types.PublicHTTPErrorTypeClassified, err.Error(), string(err.Kind()))
	e.Internal = err.Cause()
	return e
}
