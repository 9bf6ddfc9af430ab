package models

// LineItem 购物车行项目：加入时拷贝的商品字段 + 数量。
// 不变量：Quantity >= 1；数量为 0 的行不允许存在（删除是独立操作）。
type LineItem struct {
	Product
	Quantity int `json:"quantity"` // 数量
}

// Subtotal 该行小计（单价 × 数量）
func (i LineItem) Subtotal() Money {
	return NewMoneyFromDecimal(i.Price.Decimal.Mul(intDecimal(i.Quantity)))
}
