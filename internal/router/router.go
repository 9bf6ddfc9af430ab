package router

import (
	"net/http"
	"strings"

	"github.com/storefront-next/internal/config"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口（商品目录只读）
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/categories", publicHandler.GetCategories)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", publicHandler.UserLogin)
			auth.POST("/logout", publicHandler.UserLogout)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(SessionAuthMiddleware(c.SessionStore))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:id", publicHandler.DeleteCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.POST("/checkout", publicHandler.Checkout)
		}
	}

	// 页面路由
	r.GET("/login", publicHandler.LoginPage)
	r.GET("/404", publicHandler.NotFoundPage)

	pages := r.Group("")
	pages.Use(PageAuthMiddleware(c.SessionStore))
	{
		pages.GET("/", publicHandler.HomePage)
		pages.GET("/product/:id", publicHandler.ProductPage)
		pages.GET("/cart", publicHandler.CartPage)
	}

	// 未匹配路由：API 返回 JSON 404，页面跳转 /404
	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			response.NotFound(ctx, "route not found")
			return
		}
		ctx.Redirect(http.StatusFound, "/404")
	})

	return r
}
