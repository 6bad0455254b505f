package hub

import (
	"context"
	"fmt"

	"github.com/renlith/hubapi/common"
	"github.com/renlith/hubapi/common/model"
)

// HubService is the higher-level interface for the read side of the hub API.
// Every fetch checks the store first and only goes to the network when the
// cached copy is missing or stale; a failed fetch never disturbs what is
// already cached.
type HubService interface {
	GetHubInfo(ctx context.Context) (*model.HubInfo, error)
	GetDescription(ctx context.Context) (*model.HubDescription, error)
	GetTerms(ctx context.Context) (*model.HubTerms, error)
	// GetProducts fetches the catalog; bestsellerOnly narrows it to the
	// bestseller selection.
	GetProducts(ctx context.Context, bestsellerOnly bool) ([]model.Product, error)
	// GetBestseller is shorthand for GetProducts(ctx, true).
	GetBestseller(ctx context.Context) ([]model.Product, error)
	GetPlayerProducts(ctx context.Context, robloxID int64) ([]model.Product, error)
	GetPlayerProfile(ctx context.Context, robloxID int64, userType string) (*model.PlayerProfile, error)
}

// hubService is the concrete implementation that uses HubClient.
type hubService struct {
	client HubClient
	cache  common.CacheStore
	log    common.Logger
}

// NewHubService constructs a HubService over the given client and store.
func NewHubService(client HubClient, cache common.CacheStore, log common.Logger) HubService {
	if log == nil {
		log = common.NewLogger()
	}
	return &hubService{
		client: client,
		cache:  cache,
		log:    log,
	}
}

func (s *hubService) GetHubInfo(ctx context.Context) (*model.HubInfo, error) {
	const path = "hub/getinfo"
	if v, ok := s.cached(common.CategoryHub, path); ok {
		return v.(*model.HubInfo), nil
	}

	var raw rawHubInfo
	if err := s.fetchData(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	info := normalizeHubInfo(&raw)
	s.store(common.CategoryHub, path, info)
	return info, nil
}

func (s *hubService) GetDescription(ctx context.Context) (*model.HubDescription, error) {
	const path = "hub/description"
	if v, ok := s.cached(common.CategoryHub, path); ok {
		return v.(*model.HubDescription), nil
	}

	var raw rawDescription
	if err := s.fetchData(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	desc := normalizeDescription(&raw)
	s.store(common.CategoryHub, path, desc)
	return desc, nil
}

func (s *hubService) GetTerms(ctx context.Context) (*model.HubTerms, error) {
	const path = "hub/terms"
	if v, ok := s.cached(common.CategoryHub, path); ok {
		return v.(*model.HubTerms), nil
	}

	var raw rawTerms
	if err := s.fetchData(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	terms := normalizeTerms(&raw)
	s.store(common.CategoryHub, path, terms)
	return terms, nil
}

func (s *hubService) GetProducts(ctx context.Context, bestsellerOnly bool) ([]model.Product, error) {
	const path = "hub/getproducts"
	var params map[string]string
	if bestsellerOnly {
		params = map[string]string{"option": "bestseller"}
	}
	key := cacheKey(path, params)
	if v, ok := s.cached(common.CategoryProducts, key); ok {
		return v.([]model.Product), nil
	}

	var raw rawProductList
	if err := s.fetchData(ctx, path, params, &raw); err != nil {
		return nil, err
	}
	products := normalizeProducts(raw.Products)
	s.store(common.CategoryProducts, key, products)
	return products, nil
}

func (s *hubService) GetBestseller(ctx context.Context) ([]model.Product, error) {
	return s.GetProducts(ctx, true)
}

func (s *hubService) GetPlayerProducts(ctx context.Context, robloxID int64) ([]model.Product, error) {
	if robloxID <= 0 {
		return nil, fmt.Errorf("invalid roblox id %d", robloxID)
	}
	path := fmt.Sprintf("hub/user/getproducts/%d", robloxID)
	if v, ok := s.cached(common.CategoryProducts, path); ok {
		return v.([]model.Product), nil
	}

	var raw rawProductList
	if err := s.fetchData(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	products := normalizeProducts(raw.Products)
	s.store(common.CategoryProducts, path, products)
	return products, nil
}

func (s *hubService) GetPlayerProfile(ctx context.Context, robloxID int64, userType string) (*model.PlayerProfile, error) {
	if robloxID <= 0 {
		return nil, fmt.Errorf("invalid roblox id %d", robloxID)
	}
	if userType == "" {
		return nil, fmt.Errorf("user type is required")
	}
	path := fmt.Sprintf("user/check/%d", robloxID)
	params := map[string]string{"option": userType}
	key := cacheKey(path, params)
	if v, ok := s.cached(common.CategoryPlayers, key); ok {
		return v.(*model.PlayerProfile), nil
	}

	var raw rawPlayerProfile
	if err := s.fetchData(ctx, path, params, &raw); err != nil {
		return nil, err
	}
	profile := normalizePlayerProfile(&raw)
	s.store(common.CategoryPlayers, key, profile)
	return profile, nil
}

// fetchData issues the request, unwraps the response envelope and decodes
// its data payload into out. The store is never touched on failure.
func (s *hubService) fetchData(ctx context.Context, endpoint string, params map[string]string, out interface{}) error {
	var env rawEnvelope
	if err := s.client.GetJSON(ctx, endpoint, &env, params); err != nil {
		s.log.Warnf("hub fetch %s failed: %v", endpoint, err)
		return err
	}
	if len(env.Data) == 0 {
		s.log.Warnf("hub fetch %s returned no data: %s", endpoint, env.Message)
		return fmt.Errorf("no data in response: %s", env.Message)
	}
	if err := model.JSONUnmarshal(env.Data, out); err != nil {
		common.RequestsTotal.WithLabelValues("hub", common.OutcomeDecode).Inc()
		s.log.Warnf("hub fetch %s returned malformed data: %v", endpoint, err)
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

// cached consults the store; only a fresh entry is returned.
func (s *hubService) cached(category, key string) (any, bool) {
	fresh, err := s.cache.ShouldReturnCached(category, key)
	if err != nil {
		s.log.Errorf("cache lookup %s/%s: %v", category, key, err)
		return nil, false
	}
	if !fresh {
		common.CacheMissesTotal.WithLabelValues(category).Inc()
		return nil, false
	}
	v, found := s.cache.Get(category, key)
	if !found {
		return nil, false
	}
	common.CacheHitsTotal.WithLabelValues(category).Inc()
	s.log.Debugf("cache hit for %s/%s", category, key)
	return v, true
}

// store writes a freshly fetched value; the write is dropped if a concurrent
// fetch already stored a fresh copy.
func (s *hubService) store(category, key string, value any) {
	written, err := s.cache.Set(category, key, value)
	if err != nil {
		s.log.Errorf("cache write %s/%s: %v", category, key, err)
		return
	}
	if !written {
		s.log.Debugf("skipped cache write for %s/%s, entry still fresh", category, key)
	}
}
