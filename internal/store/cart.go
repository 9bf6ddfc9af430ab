package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/storage"

	"github.com/shopspring/decimal"
)

var (
	ErrLineItemInvalid = errors.New("line item invalid")
	ErrStorageNil      = errors.New("cart storage is nil")
)

// TotalsPolicy 结算汇总参数
type TotalsPolicy struct {
	FreeShippingThreshold decimal.Decimal // 免运费门槛（小计严格大于该值时免运费）
	ShippingFlat          decimal.Decimal // 固定运费
	TaxRate               decimal.Decimal // 税率
}

// DefaultTotalsPolicy 默认结算参数：满 50 免运费，固定运费 10，税率 7%
func DefaultTotalsPolicy() TotalsPolicy {
	return TotalsPolicy{
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFlat:          decimal.NewFromInt(10),
		TaxRate:               decimal.NewFromFloat(0.07),
	}
}

// CartTotals 购物车派生汇总
type CartTotals struct {
	Subtotal     models.Money `json:"subtotal"`
	Shipping     models.Money `json:"shipping"`
	Tax          models.Money `json:"tax"`
	Total        models.Money `json:"total"`
	FreeShipping bool         `json:"free_shipping"`
}

// CartStore 购物车状态存储。
// 持有唯一可变的行项目列表（按 ID 去重、保持插入顺序），
// 每次变更后同步将完整快照写入持久化存储，并通知订阅者。
type CartStore struct {
	mu          sync.Mutex
	kv          storage.KV
	policy      TotalsPolicy
	items       []models.LineItem
	subscribers []func()
}

// NewCartStore 创建购物车存储并从持久化快照恢复
func NewCartStore(kv storage.KV, policy TotalsPolicy) (*CartStore, error) {
	if kv == nil {
		return nil, ErrStorageNil
	}
	s := &CartStore{kv: kv, policy: normalizePolicy(policy)}

	raw, ok, err := kv.Get(context.Background(), constants.StorageKeyCart)
	if err != nil {
		return nil, err
	}
	if ok {
		var items []models.LineItem
		if err := json.Unmarshal(raw, &items); err != nil {
			// 快照只会由本存储自身写入；损坏视为空车而不是拒绝启动
			logger.Warnw("cart_snapshot_unreadable", "error", err)
			items = nil
		}
		for i := range items {
			if items[i].Quantity < 1 {
				items[i].Quantity = 1
			}
		}
		s.items = items
	}
	return s, nil
}

// Subscribe 注册变更回调：每次成功变更后同步调用
func (s *CartStore) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// AddToCart 加入购物车：同 ID 已存在则数量合并，否则追加新行
func (s *CartStore) AddToCart(ctx context.Context, product models.Product, quantity int) error {
	if product.ID == 0 {
		return ErrLineItemInvalid
	}
	if quantity < 1 {
		quantity = constants.DefaultAddQuantity
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, models.LineItem{Product: product, Quantity: quantity})
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// UpdateQuantity 设置指定行的数量。
// 数量下限为 1：自减只会停在 1，删除是独立操作。ID 不存在时为空操作。
func (s *CartStore) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return nil
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// RemoveFromCart 删除指定行；不存在时为空操作
func (s *CartStore) RemoveFromCart(ctx context.Context, id uint) error {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return nil
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// ClearCart 清空购物车
func (s *CartStore) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Checkout 结算：纯本地状态转换，非空购物车清空并持久化；空车为空操作
func (s *CartStore) Checkout(ctx context.Context) error {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = nil
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// Items 返回行项目快照（拷贝，保持插入顺序）
func (s *CartStore) Items() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// Count 返回所有行数量之和（角标展示用）
func (s *CartStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// TotalPrice 返回 Σ(单价 × 数量)，固定 2 位小数
func (s *CartStore) TotalPrice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.NewMoneyFromDecimal(s.subtotalLocked()).String()
}

// Totals 返回结算汇总：小计 / 运费 / 税 / 合计
func (s *CartStore) Totals() CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := s.subtotalLocked()
	shipping := s.policy.ShippingFlat
	freeShipping := subtotal.GreaterThan(s.policy.FreeShippingThreshold)
	if freeShipping {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(s.policy.TaxRate).Round(2)

	return CartTotals{
		Subtotal:     models.NewMoneyFromDecimal(subtotal),
		Shipping:     models.NewMoneyFromDecimal(shipping),
		Tax:          models.NewMoneyFromDecimal(tax),
		Total:        models.NewMoneyFromDecimal(subtotal.Add(shipping).Add(tax)),
		FreeShipping: freeShipping,
	}
}

func (s *CartStore) subtotalLocked() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range s.items {
		subtotal = subtotal.Add(item.Subtotal().Decimal)
	}
	return subtotal
}

// persistLocked 将完整快照写入持久化存储（内存已先行更新）
func (s *CartStore) persistLocked(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []models.LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, constants.StorageKeyCart, payload)
}

func (s *CartStore) notify() {
	s.mu.Lock()
	subscribers := make([]func(), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn()
	}
}

func normalizePolicy(policy TotalsPolicy) TotalsPolicy {
	defaults := DefaultTotalsPolicy()
	if policy.FreeShippingThreshold.IsZero() {
		policy.FreeShippingThreshold = defaults.FreeShippingThreshold
	}
	if policy.ShippingFlat.IsZero() {
		policy.ShippingFlat = defaults.ShippingFlat
	}
	if policy.TaxRate.IsZero() {
		policy.TaxRate = defaults.TaxRate
	}
	return policy
}
