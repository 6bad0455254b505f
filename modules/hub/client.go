package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/renlith/hubapi/common"
	"github.com/renlith/hubapi/common/model"
)

// HubClient defines the lower-level HTTP operations against the hub host:
// GET/POST, URL building, status checking. Caching happens above it.
type HubClient interface {
	GetJSON(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error
	GetBytes(ctx context.Context, endpoint string, params map[string]string) ([]byte, error)
	PostJSON(ctx context.Context, endpoint string, body io.Reader, expectedStatusCodes ...int) ([]byte, error)
	DoRequest(ctx context.Context, method, urlStr string, body io.Reader, expectedStatus ...int) ([]byte, error)
}

type hubClient struct {
	baseURL    string
	httpClient common.HttpClient
	metricsLbl string
}

// NewHubClient creates a client for the given base host. The module label
// tags request metrics ("hub" or "payments").
func NewHubClient(baseURL string, httpClient common.HttpClient, moduleLabel string) HubClient {
	return &hubClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		metricsLbl: moduleLabel,
	}
}

// ---------------------------------------------------
// Implementation of HubClient interface
// ---------------------------------------------------

// GetJSON retrieves JSON from an endpoint and unmarshals into entity.
func (c *hubClient) GetJSON(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
	data, err := c.GetBytes(ctx, endpoint, params)
	if err != nil {
		return err
	}
	return unmarshalJSON(data, entity)
}

// GetBytes retrieves raw bytes from an endpoint.
func (c *hubClient) GetBytes(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	urlStr, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, err
	}
	return c.DoRequest(ctx, http.MethodGet, urlStr, nil)
}

// PostJSON sends a POST with optional expected status codes.
func (c *hubClient) PostJSON(ctx context.Context, endpoint string, body io.Reader, expectedStatusCodes ...int) ([]byte, error) {
	urlStr, err := c.buildURL(endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.DoRequest(ctx, http.MethodPost, urlStr, body, expectedStatusCodes...)
}

// DoRequest is the core method that actually performs the HTTP request.
func (c *hubClient) DoRequest(ctx context.Context, method, urlStr string, body io.Reader, expectedStatus ...int) ([]byte, error) {
	if len(expectedStatus) == 0 {
		expectedStatus = []int{http.StatusOK}
	}

	data, status, err := c.executeRequest(ctx, method, urlStr, body)
	if err != nil {
		common.RequestsTotal.WithLabelValues(c.metricsLbl, common.OutcomeTransport).Inc()
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		common.RequestsTotal.WithLabelValues(c.metricsLbl, common.OutcomeNotFound).Inc()
	case status >= 200 && status < 300:
		common.RequestsTotal.WithLabelValues(c.metricsLbl, common.OutcomeSuccess).Inc()
	default:
		common.RequestsTotal.WithLabelValues(c.metricsLbl, common.OutcomeFail).Inc()
	}

	if !statusMatches(status, expectedStatus) {
		return nil, &common.HTTPError{
			StatusCode: status,
			Body:       data,
		}
	}
	return data, nil
}

// executeRequest actually does the low-level HTTP. The auth and content-type
// headers are attached by the transport.
func (c *hubClient) executeRequest(ctx context.Context, method, urlStr string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %v", readErr)
	}
	return data, resp.StatusCode, nil
}

// buildURL merges baseURL + endpoint + params
func (c *hubClient) buildURL(endpoint string, params map[string]string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	path, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	fullURL := base.ResolveReference(path)
	q := fullURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	fullURL.RawQuery = q.Encode()
	return fullURL.String(), nil
}

// cacheKey composes the (category-scoped) path under which a response is
// stored. Params are sorted so equivalent requests share one key.
func cacheKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := ""
	for i, k := range keys {
		sep := "&"
		if i == 0 {
			sep = "?"
		}
		query += fmt.Sprintf("%s%s=%s", sep, k, params[k])
	}
	return endpoint + query
}

func statusMatches(statusCode int, expected []int) bool {
	for _, s := range expected {
		if statusCode == s {
			return true
		}
	}
	return false
}

// unmarshalJSON helper
func unmarshalJSON(data []byte, out interface{}) error {
	return model.JSONUnmarshal(data, out)
}
