package registry

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds every registry request
const DefaultTimeout = 10 * time.Second

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Get(url string) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher
func NewRealHTTPFetcher(client *http.Client) HTTPFetcher {
	return &RealHTTPFetcher{client: client}
}

// NewHTTPClient returns a client with TLS 1.2+ and the given timeout. A zero
// timeout means DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

func (f *RealHTTPFetcher) Get(url string) (*http.Response, error) {
	return f.client.Get(url)
}

func (f *RealHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// MockHTTPFetcher simulates HTTP responses for testing
type MockHTTPFetcher struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	errors    map[string]error
	calls     map[string]int
	headers   map[string]http.Header
}

type mockResponse struct {
	status int
	body   string
}

// NewMockHTTPFetcher creates a mock HTTP fetcher
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string]mockResponse),
		errors:    make(map[string]error),
		calls:     make(map[string]int),
		headers:   make(map[string]http.Header),
	}
}

// AddResponse registers a mock response for a URL. The body is served fresh
// on every call.
func (m *MockHTTPFetcher) AddResponse(urlStr string, statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[urlStr] = mockResponse{status: statusCode, body: body}
}

// AddError registers a mock error for a URL
func (m *MockHTTPFetcher) AddError(urlStr string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[urlStr] = err
}

// Calls returns how many requests were made for a URL
func (m *MockHTTPFetcher) Calls(urlStr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[urlStr]
}

// TotalCalls returns the number of requests made for any URL
func (m *MockHTTPFetcher) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// LastHeaders returns the headers of the most recent Do call for a URL
func (m *MockHTTPFetcher) LastHeaders(urlStr string) http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headers[urlStr]
}

func (m *MockHTTPFetcher) Get(urlStr string) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[urlStr]++
	if err, ok := m.errors[urlStr]; ok {
		return nil, err
	}

	parsedURL, _ := url.Parse(urlStr)
	status, body := http.StatusNotFound, "Not Found"
	if resp, ok := m.responses[urlStr]; ok {
		status, body = resp.status, resp.body
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    &http.Request{URL: parsedURL},
	}, nil
}

func (m *MockHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	key := req.URL.String()
	m.mu.Lock()
	m.headers[key] = req.Header.Clone()
	m.mu.Unlock()
	return m.Get(key)
}
