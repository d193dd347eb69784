package clients

import "errors"

// UserMessageFor converts any client error into user-facing text: the
// server's detail for API errors, the generic failure string for transport
// errors.
func UserMessageFor(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return GenericFailureMessage
}

// IsLogicalRejection reports whether err is a domain refusal (the request
// reached the server but was rejected) rather than a transport failure.
func IsLogicalRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
