package provider

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/auth"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/storage"
	"github.com/storefront-next/internal/store"

	"github.com/shopspring/decimal"
)

// Container 依赖注入容器。
// 两个 store 由这里显式构造并注入，视图层不做任何全局查找。
type Container struct {
	Config *config.Config

	// Storage
	KV storage.KV

	// External clients
	CatalogClient *catalog.Client
	AuthClient    *auth.Client

	// Stores
	CartStore    *store.CartStore
	SessionStore *store.SessionStore
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	kv, err := openStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage failed: %w", err)
	}

	catalogClient, err := catalog.New(catalog.Config{
		BaseURL:   cfg.Catalog.BaseURL,
		TimeoutMS: cfg.Catalog.TimeoutMS,
	})
	if err != nil {
		return nil, fmt.Errorf("init catalog client failed: %w", err)
	}

	authClient, err := auth.New(auth.Config{
		BaseURL:   cfg.Auth.BaseURL,
		TimeoutMS: cfg.Auth.TimeoutMS,
	})
	if err != nil {
		return nil, fmt.Errorf("init auth client failed: %w", err)
	}

	cartStore, err := store.NewCartStore(kv, totalsPolicy(cfg.Checkout))
	if err != nil {
		return nil, fmt.Errorf("init cart store failed: %w", err)
	}
	cartStore.Subscribe(func() {
		logger.Debugw("cart_changed", "count", cartStore.Count())
	})

	sessionStore, err := store.NewSessionStore(kv, authClient)
	if err != nil {
		return nil, fmt.Errorf("init session store failed: %w", err)
	}

	return &Container{
		Config:        cfg,
		KV:            kv,
		CatalogClient: catalogClient,
		AuthClient:    authClient,
		CartStore:     cartStore,
		SessionStore:  sessionStore,
	}, nil
}

func openStorage(cfg *config.Config) (storage.KV, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "redis" {
		return storage.NewRedisKV(cfg.Storage.Redis), nil
	}

	db, err := storage.OpenDB(cfg.Storage.Driver, cfg.Storage.DSN, storage.PoolConfig{
		MaxOpenConns:           cfg.Storage.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Storage.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Storage.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Storage.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewGormKV(db)
}

func totalsPolicy(cfg config.CheckoutConfig) store.TotalsPolicy {
	policy := store.TotalsPolicy{}
	if cfg.FreeShippingThreshold > 0 {
		policy.FreeShippingThreshold = decimal.NewFromFloat(cfg.FreeShippingThreshold)
	}
	if cfg.ShippingFlat > 0 {
		policy.ShippingFlat = decimal.NewFromFloat(cfg.ShippingFlat)
	}
	if cfg.TaxRate > 0 {
		policy.TaxRate = decimal.NewFromFloat(cfg.TaxRate)
	}
	return policy
}
