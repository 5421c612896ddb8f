package httperrors

import (
	"net/http"

	"github.com/portara/walletcore/internal/types"
)

var (
	ErrNotFoundTransaction = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeGeneric, "Transaction record not found.")
	ErrNotFoundMultiSig    = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeGeneric, "No signature collection open for this fingerprint.")
	ErrNotFoundPolicy      = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeGeneric, "No multi-signature policy configured.")
)
