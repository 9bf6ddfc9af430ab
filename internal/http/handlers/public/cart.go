package public

import (
	"errors"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartItemRequest 修改数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart 获取购物车快照与派生汇总
func (h *Handler) GetCart(c *gin.Context) {
	response.Success(c, gin.H{
		"items":       h.CartStore.Items(),
		"count":       h.CartStore.Count(),
		"total_price": h.CartStore.TotalPrice(),
		"totals":      h.CartStore.Totals(),
	})
}

// AddCartItem 加入购物车：商品字段在加入时从目录服务拷贝
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	product, err := h.CatalogClient.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			response.BadRequest(c, "product not found")
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch product", err)
		return
	}

	if err := h.CartStore.AddToCart(c.Request.Context(), *product, req.Quantity); err != nil {
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, gin.H{"count": h.CartStore.Count()})
}

// UpdateCartItem 设置行数量（下限 1，由存储保证）
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	if err := h.CartStore.UpdateQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, gin.H{"count": h.CartStore.Count()})
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.CartStore.RemoveFromCart(c.Request.Context(), id); err != nil {
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, gin.H{"count": h.CartStore.Count()})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.CartStore.ClearCart(c.Request.Context()); err != nil {
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, gin.H{"count": 0})
}

// Checkout 结算：本地状态转换，清空购物车并持久化空快照
func (h *Handler) Checkout(c *gin.Context) {
	if err := h.CartStore.Checkout(c.Request.Context()); err != nil {
		respondError(c, response.CodeInternal, "failed to checkout", err)
		return
	}
	response.SuccessWithMsg(c, "order placed", gin.H{"count": 0})
}
