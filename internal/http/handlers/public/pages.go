package public

import (
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 页面路由只输出轻量 HTML 外壳，数据由前端通过 /api/v1 拉取。
const pageShellTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s · Storefront</title>
</head>
<body>
<div id="app" data-page="%s"%s></div>
</body>
</html>
`

func renderPage(c *gin.Context, title, page, extraAttrs string) {
	body := fmt.Sprintf(pageShellTemplate, html.EscapeString(title), html.EscapeString(page), extraAttrs)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

// HomePage 商品目录页（支持 ?search= 查询参数）
func (h *Handler) HomePage(c *gin.Context) {
	extra := ""
	if search := c.Query("search"); search != "" {
		extra = fmt.Sprintf(` data-search="%s"`, html.EscapeString(search))
	}
	renderPage(c, "Shop", "home", extra)
}

// LoginPage 登录页
func (h *Handler) LoginPage(c *gin.Context) {
	renderPage(c, "Login", "login", "")
}

// ProductPage 商品详情页
func (h *Handler) ProductPage(c *gin.Context) {
	extra := fmt.Sprintf(` data-product-id="%s"`, html.EscapeString(c.Param("id")))
	renderPage(c, "Product", "product", extra)
}

// CartPage 购物车页
func (h *Handler) CartPage(c *gin.Context) {
	renderPage(c, "Cart", "cart", "")
}

// NotFoundPage 404 页
func (h *Handler) NotFoundPage(c *gin.Context) {
	renderPage(c, "Not Found", "404", "")
}
