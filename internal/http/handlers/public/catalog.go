package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

// GetProducts 获取商品列表。
// 支持 ?category= 按分类过滤（目录服务侧）与 ?search= 标题过滤（本地）。
func (h *Handler) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	category := strings.TrimSpace(c.Query("category"))
	search := strings.TrimSpace(c.Query("search"))

	var (
		products []models.Product
		err      error
	)
	if category != "" {
		products, err = h.CatalogClient.ListByCategory(ctx, category)
	} else {
		products, err = h.CatalogClient.ListProducts(ctx)
	}
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch products", err)
		return
	}

	if search != "" {
		products = filterByTitle(products, search)
	}

	response.Success(c, gin.H{
		"items":    products,
		"category": category,
		"search":   search,
	})
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CatalogClient.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch categories", err)
		return
	}
	response.Success(c, gin.H{"items": categories})
}

// GetProduct 获取商品详情与同分类相关商品
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	product, err := h.CatalogClient.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			response.NotFound(c, "product not found")
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch product", err)
		return
	}

	related, err := h.CatalogClient.Related(ctx, product)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch product", err)
		return
	}

	response.Success(c, gin.H{
		"product": product,
		"related": related,
	})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid product id")
		return 0, false
	}
	return uint(id), true
}

func filterByTitle(products []models.Product, search string) []models.Product {
	needle := strings.ToLower(search)
	filtered := make([]models.Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Title), needle) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}
