package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the vendor's WordPress REST namespace.
	DefaultBaseURL = "https://www.cscsw.com/wp-json/cscsw/v1"

	defaultUpstreamTimeout = 30 * time.Second
	maxLookupBody          = 1 << 20
	referer                = "https://www.cscsw.com/request-service/"
)

// SiteLookup is the result of searching the vendor for a machine.
type SiteLookup struct {
	SiteID          string
	AlreadyReported bool
}

// Client talks to the vendor's machine search and quick service request endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client rooted at baseURL. A nil httpClient gets a client with a
// 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultUpstreamTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// LookupSite resolves the site that owns id.
//
// Transport and decode failures wrap ErrUnexpected, a non-2xx status wraps
// ErrUpstreamLookupFailed. An empty SiteID is returned as-is; deciding what it
// means is left to the caller.
func (c *Client) LookupSite(ctx context.Context, id MachineID) (SiteLookup, error) {
	endpoint := c.baseURL + "/SearchByMachineID/" + url.PathEscape(id.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SiteLookup{}, fmt.Errorf("%w: create lookup request: %w", ErrUnexpected, err)
	}
	setBrowserHeaders(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return SiteLookup{}, fmt.Errorf("%w: search machine %s: %w", ErrUnexpected, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SiteLookup{}, fmt.Errorf("%w: status %d: %s", ErrUpstreamLookupFailed, resp.StatusCode, bodySnippet(resp.Body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBody))
	if err != nil {
		return SiteLookup{}, fmt.Errorf("%w: read lookup response: %w", ErrUnexpected, err)
	}
	return decodeSiteLookup(data)
}

// SubmitTicket posts t to the quick service request endpoint.
func (c *Client) SubmitTicket(ctx context.Context, t Ticket) error {
	endpoint := c.baseURL + "/SubmitQuickServiceRequest/"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(t.Encode()))
	if err != nil {
		return fmt.Errorf("%w: create submit request: %w", ErrUnexpected, err)
	}
	setBrowserHeaders(req.Header)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: submit service request for site %s: %w", ErrUnexpected, t.SiteID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamSubmitFailed, resp.StatusCode, bodySnippet(resp.Body))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// decodeSiteLookup accepts any JSON document. Only an object carries a site; null,
// arrays and scalars decode to an empty lookup.
func decodeSiteLookup(data []byte) (SiteLookup, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return SiteLookup{}, fmt.Errorf("%w: decode lookup response: %w", ErrUnexpected, err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return SiteLookup{}, nil
	}

	var lookup SiteLookup
	switch v := obj["SiteID"].(type) {
	case string:
		lookup.SiteID = v
	case float64:
		if v != 0 {
			lookup.SiteID = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	lookup.AlreadyReported = truthy(obj["MachineIDAlreadyReported"])
	return lookup, nil
}

// truthy reports whether the vendor flag is set. The field is untyped upstream, so
// numbers and strings are accepted alongside booleans; any non-empty string counts.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return false
	}
}

func setBrowserHeaders(h http.Header) {
	h.Set("Accept", "/")
	h.Set("Accept-Language", "en-US,en;q=0.8")
	h.Set("Priority", "u=1, i")
	h.Set("Sec-Ch-Ua", `"Not(A:Brand";v="99", "Brave";v="133", "Chromium";v="133"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Gpc", "1")
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("Referer", referer)
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

func bodySnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 2048))
	return strings.TrimSpace(string(data))
}
