package constants

// 持久化键值存储布局：两个键，见 internal/storage。
const (
	// StorageKeyToken 会话凭证（原始 bearer 字符串，登出后删除）
	StorageKeyToken = "token"
	// StorageKeyCart 购物车快照（行项目 JSON 数组）
	StorageKeyCart = "cart"
)

// DefaultAddQuantity 加入购物车的默认数量
const DefaultAddQuantity = 1

// MaxRelatedProducts 详情页相关商品数量上限
const MaxRelatedProducts = 4
