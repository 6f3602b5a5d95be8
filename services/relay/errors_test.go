package relay

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantBody    string
		wantOutcome string
	}{
		{"success", nil, http.StatusOK, "Service request submitted successfully.", "submitted"},
		{"invalid format", fmt.Errorf("%w: %q", ErrInvalidFormat, "x"), http.StatusBadRequest, "Invalid machine ID format. Expected format: 123-ABC.", "invalid_format"},
		{"lookup failed", fmt.Errorf("%w: status 502", ErrUpstreamLookupFailed), http.StatusInternalServerError, "Failed to fetch SiteID", "lookup_failed"},
		{"site not found", ErrSiteNotFound, http.StatusNotFound, "SiteID not found.", "site_not_found"},
		{"already reported", ErrAlreadyReported, http.StatusBadRequest, "Machine ID already reported.", "already_reported"},
		{"submit failed", fmt.Errorf("%w: status 403", ErrUpstreamSubmitFailed), http.StatusInternalServerError, "Failed to submit service request", "submit_failed"},
		{"unexpected", fmt.Errorf("%w: dial tcp: refused", ErrUnexpected), http.StatusInternalServerError, "An error occurred while processing the request.", "unexpected"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "An error occurred while processing the request.", "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := StatusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantOutcome, Outcome(tt.err))
		})
	}
}
