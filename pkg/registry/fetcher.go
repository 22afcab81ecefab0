package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fulmenhq/omniscript/pkg/logger"
)

// DefaultUserAgent identifies this client to every registry
const DefaultUserAgent = "OmniScript/1.0"

// maxBodyBytes caps how much of a response body is decoded
const maxBodyBytes = 16 << 20

// Fetcher issues single JSON GET requests. Failures never reach the caller:
// they are logged and reported as "no value".
type Fetcher struct {
	http      HTTPFetcher
	userAgent string
}

// NewFetcher wraps an HTTPFetcher. An empty userAgent means DefaultUserAgent.
func NewFetcher(httpFetcher HTTPFetcher, userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{http: httpFetcher, userAgent: userAgent}
}

// UserAgent returns the identifying header value sent with each request
func (f *Fetcher) UserAgent() string { return f.userAgent }

// GetJSON fetches rawURL and decodes the body into dest. It reports false on
// any transport or decode failure, after logging a diagnostic.
func (f *Fetcher) GetJSON(rawURL string, headers map[string]string, dest any) bool {
	if err := f.getJSON(rawURL, headers, dest); err != nil {
		logger.Warn("Error fetching URL", logger.String("url", rawURL), logger.Err(err))
		return false
	}
	return true
}

func (f *Fetcher) getJSON(rawURL string, headers map[string]string, dest any) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransportError{URL: rawURL, Wrapped: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return &TransportError{URL: rawURL, Wrapped: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &TransportError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{URL: rawURL, Wrapped: fmt.Errorf("read body: %w", err)}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &DecodeError{URL: rawURL, Wrapped: err}
	}
	return nil
}
