package router

import (
	"fmt"
	"strings"

	"github.com/stg-catalog/internal/cache"
	"github.com/stg-catalog/internal/config"
	publichandlers "github.com/stg-catalog/internal/http/handlers/public"
	"github.com/stg-catalog/internal/logger"
	"github.com/stg-catalog/internal/provider"

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
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "stg"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 购物车接口（登录用户或游客设备）
		cart := apiV1.Group("/cart")
		{
			// 游客获取设备标识，无需身份
			cart.POST("/device", publicHandler.IssueDeviceID)

			identified := cart.Group("")
			identified.Use(CartIdentityMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
			{
				identified.GET("", publicHandler.GetCart)
				identified.POST("/items", publicHandler.AddCartItem)
				identified.PUT("/items/:id", publicHandler.UpdateCartItem)
				identified.DELETE("/items/:id", publicHandler.DeleteCartItem)
				identified.DELETE("", publicHandler.ClearCart)
			}
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.POST("/auth/logout", publicHandler.UserLogout)
			user.POST("/checkout", publicHandler.Checkout)
			user.GET("/checkout/history", publicHandler.GetCheckoutHistory)
		}
	}

	return r
}
