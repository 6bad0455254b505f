package hub_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/renlith/hubapi/common"
	"github.com/renlith/hubapi/common/model"
	"github.com/renlith/hubapi/modules/hub"
)

type mockHubClient struct {
	getJSONFunc  func(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error
	getBytesFunc func(ctx context.Context, endpoint string, params map[string]string) ([]byte, error)
	postJSONFunc func(ctx context.Context, endpoint string, body io.Reader, expectedStatusCodes ...int) ([]byte, error)
	doRequestFunc func(ctx context.Context, method, urlStr string, body io.Reader, expectedStatus ...int) ([]byte, error)
}

func (m *mockHubClient) GetJSON(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
	return m.getJSONFunc(ctx, endpoint, entity, params)
}
func (m *mockHubClient) GetBytes(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	return m.getBytesFunc(ctx, endpoint, params)
}
func (m *mockHubClient) PostJSON(ctx context.Context, endpoint string, body io.Reader, expectedStatusCodes ...int) ([]byte, error) {
	return m.postJSONFunc(ctx, endpoint, body, expectedStatusCodes...)
}
func (m *mockHubClient) DoRequest(ctx context.Context, method, urlStr string, body io.Reader, expectedStatus ...int) ([]byte, error) {
	return m.doRequestFunc(ctx, method, urlStr, body, expectedStatus...)
}

// respondWith builds a getJSONFunc serving a fixed envelope and counting calls.
func respondWith(payload string, calls *int) func(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
	return func(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
		*calls++
		return json.Unmarshal([]byte(payload), entity)
	}
}

func newClockedStore(d common.CacheDurations) (common.CacheStore, *time.Time) {
	store := common.NewCacheStore(d)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetClockForTest(func() time.Time { return now })
	return store, &now
}

func TestHubService_GetHubInfo_CachedForever(t *testing.T) {
	calls := 0
	mClient := &mockHubClient{
		getJSONFunc: respondWith(`{"status":200,"message":"ok","data":{"hub_id":"h1","hub_name":"Ember Store","active":true}}`, &calls),
	}
	store, now := newClockedStore(common.DefaultCacheDurations())
	svc := hub.NewHubService(mClient, store, nil)

	ctx := context.Background()
	info, err := svc.GetHubInfo(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "Ember Store" {
		t.Errorf("expected 'Ember Store', got %q", info.Name)
	}

	// any later fetch inside a never-expiring category stays off the network
	*now = now.Add(1000 * time.Hour)
	info2, err := svc.GetHubInfo(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 transport call, got %d", calls)
	}
	if info2 != info {
		t.Error("expected the cached object back")
	}
}

func TestHubService_GetProducts_TTLBoundaries(t *testing.T) {
	calls := 0
	mClient := &mockHubClient{
		getJSONFunc: respondWith(`{"status":200,"data":{"products":[{"product_id":"p1","stock":"5"}]}}`, &calls),
	}
	store, now := newClockedStore(common.CacheDurations{
		Hub:      common.NeverExpires,
		Products: 30 * time.Second,
		Players:  time.Minute,
	})
	svc := hub.NewHubService(mClient, store, nil)
	ctx := context.Background()

	if _, err := svc.GetProducts(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 transport call, got %d", calls)
	}

	// T+N-1: still inside the trust window
	*now = now.Add(29 * time.Second)
	if _, err := svc.GetProducts(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch inside TTL must not hit transport, got %d calls", calls)
	}

	// T+N+1: stale, refetch
	*now = now.Add(2 * time.Second)
	if _, err := svc.GetProducts(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch past TTL must hit transport, got %d calls", calls)
	}
}

func TestHubService_FailedFetchKeepsCacheEntry(t *testing.T) {
	calls := 0
	good := respondWith(`{"status":200,"data":{"products":[{"product_id":"p1","stock":"5"}]}}`, &calls)
	failing := false
	mClient := &mockHubClient{}
	mClient.getJSONFunc = func(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
		if failing {
			return errors.New("connection refused")
		}
		return good(ctx, endpoint, entity, params)
	}
	store, now := newClockedStore(common.CacheDurations{
		Hub:      common.NeverExpires,
		Products: 30 * time.Second,
		Players:  time.Minute,
	})
	svc := hub.NewHubService(mClient, store, nil)
	ctx := context.Background()

	if _, err := svc.GetProducts(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*now = now.Add(time.Minute)
	failing = true
	if _, err := svc.GetProducts(ctx, false); err == nil {
		t.Fatal("expected transport error")
	}

	// the stale entry must survive the failed refresh
	val, found := store.Get(common.CategoryProducts, "hub/getproducts")
	if !found {
		t.Fatal("expected prior cache entry to survive a failed fetch")
	}
	products := val.([]model.Product)
	if len(products) != 1 || products[0].ID != "p1" {
		t.Errorf("cache entry was disturbed: %#v", products)
	}
}

func TestHubService_ParseFailureLeavesCacheUntouched(t *testing.T) {
	calls := 0
	mClient := &mockHubClient{
		getJSONFunc: respondWith(`{"status":500,"message":"internal error"}`, &calls),
	}
	store, _ := newClockedStore(common.DefaultCacheDurations())
	svc := hub.NewHubService(mClient, store, nil)

	if _, err := svc.GetProducts(context.Background(), false); err == nil {
		t.Fatal("expected error for response without data")
	}
	if _, found := store.Get(common.CategoryProducts, "hub/getproducts"); found {
		t.Error("failed parse must not write the cache")
	}
}

func TestHubService_BestsellerMatchesProductsTrue(t *testing.T) {
	calls := 0
	var endpoints []string
	var options []string
	mClient := &mockHubClient{}
	mClient.getJSONFunc = func(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
		calls++
		endpoints = append(endpoints, endpoint)
		options = append(options, params["option"])
		return json.Unmarshal([]byte(`{"status":200,"data":{"products":[{"product_id":"best","stock":true}]}}`), entity)
	}
	store, _ := newClockedStore(common.CacheDurations{
		Hub:      common.NeverExpires,
		Products: 0, // force every call to the network so both requests are observable
		Players:  time.Minute,
	})
	svc := hub.NewHubService(mClient, store, nil)
	ctx := context.Background()

	fromFlag, err := svc.GetProducts(ctx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromShorthand, err := svc.GetBestseller(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 || endpoints[0] != endpoints[1] || options[0] != options[1] {
		t.Errorf("expected identical requests, got %v %v", endpoints, options)
	}
	if options[0] != "bestseller" {
		t.Errorf("expected option=bestseller, got %q", options[0])
	}
	if len(fromFlag) != 1 || len(fromShorthand) != 1 || fromFlag[0].ID != fromShorthand[0].ID {
		t.Errorf("expected equivalent results, got %#v vs %#v", fromFlag, fromShorthand)
	}
}

func TestHubService_BestsellerSharesCacheKey(t *testing.T) {
	calls := 0
	mClient := &mockHubClient{
		getJSONFunc: respondWith(`{"status":200,"data":{"products":[{"product_id":"best","stock":true}]}}`, &calls),
	}
	store, _ := newClockedStore(common.DefaultCacheDurations())
	svc := hub.NewHubService(mClient, store, nil)
	ctx := context.Background()

	if _, err := svc.GetProducts(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetBestseller(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("GetBestseller must reuse the GetProducts(true) cache entry, got %d calls", calls)
	}
}

func TestHubService_GetPlayerProfile(t *testing.T) {
	var gotEndpoint string
	var gotOption string
	mClient := &mockHubClient{}
	mClient.getJSONFunc = func(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
		gotEndpoint = endpoint
		gotOption = params["option"]
		return json.Unmarshal([]byte(`{"status":200,"data":{"roblox_id":"156","username":"builderman","verified":true,"account_type":"discord"}}`), entity)
	}
	store, _ := newClockedStore(common.DefaultCacheDurations())
	svc := hub.NewHubService(mClient, store, nil)

	profile, err := svc.GetPlayerProfile(context.Background(), 156, "discord")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotEndpoint != "user/check/156" || gotOption != "discord" {
		t.Errorf("unexpected request %s option=%s", gotEndpoint, gotOption)
	}
	if profile.RobloxID != 156 || !profile.Verified {
		t.Errorf("unexpected profile: %#v", profile)
	}
}

func TestHubService_GetPlayerProducts(t *testing.T) {
	var gotEndpoint string
	mClient := &mockHubClient{}
	mClient.getJSONFunc = func(ctx context.Context, endpoint string, entity interface{}, params map[string]string) error {
		gotEndpoint = endpoint
		return json.Unmarshal([]byte(`{"status":200,"data":{"products":[{"product_id":"p1"}]}}`), entity)
	}
	store, _ := newClockedStore(common.DefaultCacheDurations())
	svc := hub.NewHubService(mClient, store, nil)

	products, err := svc.GetPlayerProducts(context.Background(), 156)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotEndpoint != "hub/user/getproducts/156" {
		t.Errorf("unexpected endpoint %s", gotEndpoint)
	}
	if len(products) != 1 {
		t.Errorf("expected 1 product, got %d", len(products))
	}
}

func TestHubService_InvalidArguments(t *testing.T) {
	svc := hub.NewHubService(&mockHubClient{}, common.NewCacheStore(common.DefaultCacheDurations()), nil)
	ctx := context.Background()

	if _, err := svc.GetPlayerProducts(ctx, 0); err == nil {
		t.Error("expected error for zero roblox id")
	}
	if _, err := svc.GetPlayerProfile(ctx, -1, "discord"); err == nil {
		t.Error("expected error for negative roblox id")
	}
	if _, err := svc.GetPlayerProfile(ctx, 156, ""); err == nil {
		t.Error("expected error for empty user type")
	}
}
