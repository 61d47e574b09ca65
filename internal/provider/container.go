package provider

import (
	"time"

	"github.com/stg-catalog/internal/cache"
	"github.com/stg-catalog/internal/config"
	"github.com/stg-catalog/internal/logger"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/queue"
	"github.com/stg-catalog/internal/repository"
	"github.com/stg-catalog/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	ProductRepo     repository.ProductRepository
	CartRepo        repository.CartRepository
	GuestCartRepo   repository.GuestCartRepository
	CheckoutLogRepo repository.CheckoutLogRepository

	// Services
	UserAuthService *service.UserAuthService
	CatalogService  *service.CatalogService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CheckoutLogRepo = repository.NewCheckoutLogRepository(db)

	// 游客槽位优先使用 Redis，未启用时退化为内存实现
	if cache.Enabled() {
		ttl := time.Duration(c.Config.GuestCart.TTLHours) * time.Hour
		c.GuestCartRepo = repository.NewRedisGuestCartRepository(ttl)
	} else {
		logger.Warnw("provider_guest_cart_memory_fallback", "reason", "redis_disabled")
		c.GuestCartRepo = repository.NewMemoryGuestCartRepository()
	}
}

func (c *Container) initServices() {
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.CatalogService = service.NewCatalogService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.GuestCartRepo, c.ProductRepo)
	c.CheckoutService = service.NewCheckoutService(c.CartService, c.QueueClient, c.Config.Checkout)
}
