package types

// PublicHTTPErrorType discriminates machine-readable error families.
const (
	PublicHTTPErrorTypeGeneric    = "generic"
	PublicHTTPErrorTypeClassified = "classified" // carries a wallet error kind in detail
)

// PublicHTTPError is the error envelope returned to API consumers.
type PublicHTTPError struct {
	Code   *int64  `json:"status"`
	Type   *string `json:"type"`
	Title  *string `json:"title"`
	Detail string  `json:"detail,omitempty"`
}

// HTTPValidationErrorDetail pinpoints one invalid request field.
type HTTPValidationErrorDetail struct {
	Key   *string `json:"key"`
	In    *string `json:"in"`
	Error *string `json:"error"`
}

// PublicHTTPValidationError extends the envelope with per-field details.
type PublicHTTPValidationError struct {
	PublicHTTPError
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors"`
}
