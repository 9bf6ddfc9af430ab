package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const fixtureProducts = `[
	{"id":1,"title":"Backpack","price":109.95,"description":"d","category":"men's clothing","image":"https://img/1.jpg","rating":{"rate":3.9,"count":120}},
	{"id":2,"title":"T-Shirt","price":22.3,"description":"d","category":"men's clothing","image":"https://img/2.jpg","rating":{"rate":4.1,"count":259}},
	{"id":3,"title":"Jacket","price":55.99,"description":"d","category":"men's clothing","image":"https://img/3.jpg","rating":{"rate":4.7,"count":500}},
	{"id":4,"title":"Slim Shirt","price":15.99,"description":"d","category":"men's clothing","image":"https://img/4.jpg","rating":{"rate":2.1,"count":430}},
	{"id":5,"title":"Bracelet","price":695,"description":"d","category":"jewelery","image":"https://img/5.jpg","rating":{"rate":4.6,"count":400}},
	{"id":6,"title":"Ring","price":168,"description":"d","category":"jewelery","image":"https://img/6.jpg","rating":{"rate":3.9,"count":70}}
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureProducts))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["men's clothing","jewelery"]`))
	})
	mux.HandleFunc("/products/category/jewelery", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":5,"title":"Bracelet","price":695,"category":"jewelery"},
			{"id":6,"title":"Ring","price":168,"category":"jewelery"},
			{"id":8,"title":"Necklace","price":59.99,"category":"jewelery"},
			{"id":9,"title":"Earrings","price":12.5,"category":"jewelery"},
			{"id":10,"title":"Pendant","price":89,"category":"jewelery"}
		]`))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"title":"Backpack","price":109.95,"description":"d","category":"men's clothing","image":"https://img/1.jpg","rating":{"rate":3.9,"count":120}}`))
	})
	mux.HandleFunc("/products/5", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":5,"title":"Bracelet","price":695,"description":"d","category":"jewelery","image":"https://img/5.jpg","rating":{"rate":4.6,"count":400}}`))
	})
	mux.HandleFunc("/products/999", func(w http.ResponseWriter, r *http.Request) {
		// 目录服务对未知 ID 返回空响应体
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Config{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("empty base_url should fail with ErrConfigInvalid, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL)

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) != 6 {
		t.Fatalf("want 6 products got %d", len(products))
	}
	if products[0].Title != "Backpack" {
		t.Fatalf("unexpected first product: %s", products[0].Title)
	}
	if products[0].Price.String() != "109.95" {
		t.Fatalf("price should round-trip as 2-decimal string, got %s", products[0].Price.String())
	}
	if products[0].Rating.Count != 120 {
		t.Fatalf("unexpected rating count: %d", products[0].Rating.Count)
	}
}

func TestListCategories(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL)

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if len(categories) != 2 || categories[1] != "jewelery" {
		t.Fatalf("unexpected categories: %v", categories)
	}
}

func TestGetProduct(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL)

	product, err := client.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.ID != 1 || product.Category != "men's clothing" {
		t.Fatalf("unexpected product: %+v", product)
	}
}

func TestGetProductMissing(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL)

	if _, err := client.GetProduct(context.Background(), 999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product should return ErrProductNotFound, got %v", err)
	}
	if _, err := client.GetProduct(context.Background(), 0); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("zero id should return ErrProductNotFound, got %v", err)
	}
}

func TestRelatedExcludesSelfAndCaps(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(t, server.URL)

	product, err := client.GetProduct(context.Background(), 5)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}

	related, err := client.Related(context.Background(), product)
	if err != nil {
		t.Fatalf("related failed: %v", err)
	}
	if len(related) != 4 {
		t.Fatalf("related should cap at 4, got %d", len(related))
	}
	for _, item := range related {
		if item.ID == product.ID {
			t.Fatalf("related must not contain the product itself")
		}
	}
}

func TestRequestFailureSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	client := newTestClient(t, server.URL)

	if _, err := client.ListProducts(context.Background()); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("server error should map to ErrRequestFailed, got %v", err)
	}
}
