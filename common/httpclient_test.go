package common_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/renlith/hubapi/common"
)

func TestNewHubHttpClient(t *testing.T) {
	base := &http.Client{}
	client := common.NewHubHttpClient(common.StaticToken("secret"), base, 0)
	if client == nil {
		t.Fatal("expected non-nil HttpClient")
	}
}

func TestHttpClient_AttachesHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("hub-secret-key") != "super-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, "missing secret")
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "wrong content type")
			return
		}
		fmt.Fprint(w, "hello hub")
	}))
	defer ts.Close()

	hc := common.NewHubHttpClient(common.StaticToken("super-secret"), &http.Client{}, 0)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hello hub" {
		t.Errorf("unexpected response: %s", string(body))
	}
}

func TestHttpClient_DoesNotMutateOriginalRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	hc := common.NewHubHttpClient(common.StaticToken("secret"), &http.Client{}, 0)
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)

	resp, err := hc.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if req.Header.Get("hub-secret-key") != "" {
		t.Error("original request must not carry the injected secret header")
	}
}

func TestHttpClient_TokenResolutionFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server without a token")
	}))
	defer ts.Close()

	hc := common.NewHubHttpClient(common.StaticToken(""), &http.Client{}, 0)
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)

	if _, err := hc.Do(req); err == nil {
		t.Fatal("expected error when token cannot be resolved")
	}
}
