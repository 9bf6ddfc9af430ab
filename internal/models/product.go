package models

// Rating 商品评分
type Rating struct {
	Rate  float64 `json:"rate"`  // 平均分
	Count int     `json:"count"` // 评分人数
}

// Product 外部目录服务返回的商品结构
// 说明：商品数据只读，按页面按需拉取，本服务不落库。
type Product struct {
	ID          uint   `json:"id"`          // 商品ID（目录服务内唯一）
	Title       string `json:"title"`       // 标题
	Price       Money  `json:"price"`       // 单价
	Description string `json:"description"` // 描述
	Category    string `json:"category"`    // 分类
	Image       string `json:"image"`       // 图片地址
	Rating      Rating `json:"rating"`      // 评分
}
