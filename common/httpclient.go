package common

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// HttpClient is an interface for HTTP operations.
// This allows mocking or custom transport layers in testing.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	Get(url string) (*http.Response, error)
	Post(url, contentType string, body io.Reader) (*http.Response, error)
	CloseIdleConnections()
}

// HTTPError is a custom error that captures unexpected status codes and response bodies.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// hubHeaderRoundTripper is a custom RoundTripper that attaches the
// hub-secret-key and Content-Type headers expected by the hub API.
type hubHeaderRoundTripper struct {
	Wrapped http.RoundTripper
	Tokens  TokenProvider
}

func (rt *hubHeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := rt.Tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("resolving hub secret: %w", err)
	}
	// clone request to avoid mutating the original
	clone := req.Clone(req.Context())
	clone.Header.Set("Content-Type", "application/json")
	clone.Header.Set("hub-secret-key", token)
	return rt.Wrapped.RoundTrip(clone)
}

// DefaultTimeout bounds every hub request when the caller does not configure one.
const DefaultTimeout = 10 * time.Second

// Implementation of HttpClient that wraps a standard *http.Client.
type httpClient struct {
	client *http.Client
}

// NewHubHttpClient returns a new HttpClient that signs every request with the
// token resolved from the given provider. A non-positive timeout falls back
// to DefaultTimeout.
func NewHubHttpClient(tokens TokenProvider, base *http.Client, timeout time.Duration) HttpClient {
	if base.Transport == nil {
		base.Transport = http.DefaultTransport
	}
	base.Transport = &hubHeaderRoundTripper{
		Wrapped: base.Transport,
		Tokens:  tokens,
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base.Timeout = timeout

	return &httpClient{client: base}
}

// Implementation of the interface:

func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *httpClient) Get(url string) (*http.Response, error) {
	return h.client.Get(url)
}

func (h *httpClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return h.client.Post(url, contentType, body)
}

func (h *httpClient) CloseIdleConnections() {
	h.client.CloseIdleConnections()
}
