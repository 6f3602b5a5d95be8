package relay

import (
	"errors"
	"net/http"
)

// Error kinds produced by Relay.Submit. Callers match them with errors.Is.
var (
	ErrInvalidFormat        = errors.New("invalid machine id format")
	ErrUpstreamLookupFailed = errors.New("site lookup failed")
	ErrSiteNotFound         = errors.New("site id not found")
	ErrAlreadyReported      = errors.New("machine id already reported")
	ErrUpstreamSubmitFailed = errors.New("service request submission failed")
	ErrUnexpected           = errors.New("unexpected relay error")
)

const (
	msgSubmitted       = "Service request submitted successfully."
	msgInvalidFormat   = "Invalid machine ID format. Expected format: 123-ABC."
	msgLookupFailed    = "Failed to fetch SiteID"
	msgSiteNotFound    = "SiteID not found."
	msgAlreadyReported = "Machine ID already reported."
	msgSubmitFailed    = "Failed to submit service request"
	msgUnexpected      = "An error occurred while processing the request."
	msgNotFound        = "Not Found"
)

// StatusFor maps the result of Relay.Submit to the HTTP status and plain-text body
// returned to the caller. A nil error is a successful submission.
func StatusFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, msgSubmitted
	case errors.Is(err, ErrInvalidFormat):
		return http.StatusBadRequest, msgInvalidFormat
	case errors.Is(err, ErrUpstreamLookupFailed):
		return http.StatusInternalServerError, msgLookupFailed
	case errors.Is(err, ErrSiteNotFound):
		return http.StatusNotFound, msgSiteNotFound
	case errors.Is(err, ErrAlreadyReported):
		return http.StatusBadRequest, msgAlreadyReported
	case errors.Is(err, ErrUpstreamSubmitFailed):
		return http.StatusInternalServerError, msgSubmitFailed
	default:
		return http.StatusInternalServerError, msgUnexpected
	}
}

// Outcome returns the metrics label for the result of Relay.Submit.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "submitted"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrUpstreamLookupFailed):
		return "lookup_failed"
	case errors.Is(err, ErrSiteNotFound):
		return "site_not_found"
	case errors.Is(err, ErrAlreadyReported):
		return "already_reported"
	case errors.Is(err, ErrUpstreamSubmitFailed):
		return "submit_failed"
	default:
		return "unexpected"
	}
}
