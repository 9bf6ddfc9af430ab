package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront-next/internal/auth"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/storage"
	"github.com/storefront-next/internal/store"

	"github.com/gin-gonic/gin"
)

func newUpstreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing","image":"https://img.example/1.png","rating":{"rate":3.9,"count":120}}`))
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Password != "83r5^_" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"username or password is incorrect"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"fixture-token"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestContainer(t *testing.T) (*config.Config, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := newUpstreamServer(t)

	db, err := storage.OpenDB("sqlite", "file::memory:", storage.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	kv, err := storage.NewGormKV(db)
	if err != nil {
		t.Fatalf("init kv failed: %v", err)
	}

	catalogClient, err := catalog.New(catalog.Config{BaseURL: upstream.URL})
	if err != nil {
		t.Fatalf("init catalog client failed: %v", err)
	}
	authClient, err := auth.New(auth.Config{BaseURL: upstream.URL})
	if err != nil {
		t.Fatalf("init auth client failed: %v", err)
	}

	cartStore, err := store.NewCartStore(kv, store.TotalsPolicy{})
	if err != nil {
		t.Fatalf("init cart store failed: %v", err)
	}
	sessionStore, err := store.NewSessionStore(kv, authClient)
	if err != nil {
		t.Fatalf("init session store failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Log.Dir = t.TempDir()

	return cfg, &provider.Container{
		Config:        cfg,
		KV:            kv,
		CatalogClient: catalogClient,
		AuthClient:    authClient,
		CartStore:     cartStore,
		SessionStore:  sessionStore,
	}
}

func doLogin(t *testing.T, r *gin.Engine, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": "johnd", "password": password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func envelopeStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal envelope failed: %v body %s", err, w.Body.String())
	}
	return resp.StatusCode
}

func TestCartPageRedirectsWhenUnauthenticated(t *testing.T) {
	cfg, c := newTestContainer(t)
	r := SetupRouter(cfg, c)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status want 302 got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect want /login got %s", loc)
	}
}

func TestCartPageReachableAfterLogin(t *testing.T) {
	cfg, c := newTestContainer(t)
	r := SetupRouter(cfg, c)

	if w := doLogin(t, r, "83r5^_"); envelopeStatusCode(t, w) != 0 {
		t.Fatalf("login should succeed, body %s", w.Body.String())
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("cart page status want 200 got %d", w.Code)
	}
}

func TestCartAPIRejectsWhenUnauthenticated(t *testing.T) {
	cfg, c := newTestContainer(t)
	r := SetupRouter(cfg, c)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	r.ServeHTTP(w, req)

	if code := envelopeStatusCode(t, w); code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestLoginFailureKeepsGateClosed(t *testing.T) {
	cfg, c := newTestContainer(t)
	r := SetupRouter(cfg, c)

	if w := doLogin(t, r, "wrong"); envelopeStatusCode(t, w) != 401 {
		t.Fatalf("login should be rejected, body %s", w.Body.String())
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status want 302 got %d", w.Code)
	}
}

func TestCartFlowThroughAPI(t *testing.T) {
	cfg, c := newTestContainer(t)
	r := SetupRouter(cfg, c)

	if w := doLogin(t, r, "83r5^_"); envelopeStatusCode(t, w) != 0 {
		t.Fatalf("login should succeed, body %s", w.Body.String())
	}

	body, _ := json.Marshal(map[string]any{"product_id": 1, "quantity": 2})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if envelopeStatusCode(t, w) != 0 {
		t.Fatalf("add item should succeed, body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart status want 200 got %d", w.Code)
	}

	var resp struct {
		Data struct {
			Count      int    `json:"count"`
			TotalPrice string `json:"total_price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal cart response failed: %v", err)
	}
	if resp.Data.Count != 2 {
		t.Fatalf("cart count want 2 got %d", resp.Data.Count)
	}
	if resp.Data.TotalPrice != "219.90" {
		t.Fatalf("cart total want 219.90 got %s", resp.Data.TotalPrice)
	}
}

func TestNoRouteBehavior(t *testing.T) {
	cfg, c := newTestContainer(t)
	r := SetupRouter(cfg, c)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	r.ServeHTTP(w, req)
	if code := envelopeStatusCode(t, w); code != 404 {
		t.Fatalf("api no-route status_code want 404 got %d", code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login page status want 200 got %d", w.Code)
	}
}
