// Package hubapi is a client library for the hub commerce API. It wires the
// hub (read) and payments (mutation) services over one authenticated
// transport and one in-process response cache.
package hubapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/renlith/hubapi/common"
	"github.com/renlith/hubapi/common/model"
	"github.com/renlith/hubapi/modules/hub"
	"github.com/renlith/hubapi/modules/payments"
)

// Client bundles the per-instance services. One Client holds one secret key
// and one cache; construct a new Client per hub.
type Client struct {
	Hub      hub.HubService
	Payments payments.PaymentsService

	// Info is the result of the construction-time liveness check.
	Info *model.HubInfo

	httpClient common.HttpClient
	cache      common.CacheStore
}

type Option func(*settings)

type settings struct {
	logger common.Logger
	tokens common.TokenProvider
	base   *http.Client
}

// WithLogger replaces the default logrus logger.
func WithLogger(log common.Logger) Option {
	return func(s *settings) { s.logger = log }
}

// WithTokenProvider supplies the host's secret store. An explicit
// Config.SecretKey still wins over it.
func WithTokenProvider(p common.TokenProvider) Option {
	return func(s *settings) { s.tokens = p }
}

// WithHTTPClient replaces the base *http.Client the transport wraps.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.base = c }
}

// New constructs a Client. Construction fails fast when no secret key can be
// resolved, when running outside a server context, or when the eager
// hub/getinfo liveness check does not come back clean.
func New(ctx context.Context, cfg *common.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		loaded, err := common.LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if strings.EqualFold(cfg.Environment, "client") {
		return nil, fmt.Errorf("hubapi must run in a server context, not %q", cfg.Environment)
	}

	s := &settings{base: &http.Client{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = common.NewLogger()
	}

	token, err := common.ResolveToken(common.StaticToken(cfg.SecretKey), s.tokens, common.EnvToken{})
	if err != nil {
		return nil, err
	}

	httpClient := common.NewHubHttpClient(common.StaticToken(token), s.base, cfg.Timeout)
	cache := common.NewCacheStore(cfg.CacheDurations())

	client := &Client{
		Hub: hub.NewHubService(
			hub.NewHubClient(cfg.HubBaseURL, httpClient, "hub"),
			cache,
			s.logger,
		),
		Payments: payments.NewPaymentsService(
			payments.NewPaymentsClient(cfg.PaymentsBaseURL, httpClient),
			s.logger,
		),
		httpClient: httpClient,
		cache:      cache,
	}

	// liveness/integrity check; also primes the hub cache
	info, err := client.Hub.GetHubInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("hub liveness check failed: %w", err)
	}
	client.Info = info

	return client, nil
}

// Cache exposes the instance store, mainly for tests and for hosts that want
// to force-expire an entry.
func (c *Client) Cache() common.CacheStore {
	return c.cache
}

// Close releases idle transport connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
