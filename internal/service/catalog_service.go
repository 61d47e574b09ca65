package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/stg-catalog/internal/cache"
	"github.com/stg-catalog/internal/constants"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/repository"
)

const (
	catalogCacheKey = "catalog:products"
	catalogCacheTTL = 60 * time.Second
)

// CatalogQuery 商品浏览查询条件
type CatalogQuery struct {
	Category string // 分类标识，空或 all 不过滤
	Search   string // 名称模糊搜索，忽略大小写
	Sort     string // 排序方式，见 constants.SortOption*
}

// CatalogService 商品目录服务
type CatalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

// List 获取全部上架商品，带短时 Redis 缓存
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if hit, err := cache.GetJSON(ctx, catalogCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	products, err := s.productRepo.ListActive()
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(ctx, catalogCacheKey, products, catalogCacheTTL)
	return products, nil
}

// Get 获取单个上架商品
func (s *CatalogService) Get(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Browse 按查询条件过滤并排序商品
func (s *CatalogService) Browse(ctx context.Context, query CatalogQuery) ([]models.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterProducts(products, query.Category, query.Search)
	return SortProducts(filtered, query.Sort), nil
}

// FilterProducts 按分类与名称关键字过滤商品
// 分类为空或 all 时不过滤分类；关键字匹配忽略大小写
func FilterProducts(products []models.Product, category, search string) []models.Product {
	category = strings.TrimSpace(category)
	keyword := strings.ToLower(strings.TrimSpace(search))

	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != constants.CategoryAll && p.Category != category {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(p.Name), keyword) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// SortProducts 按排序方式返回新的商品切片，排序稳定，未知方式保持原序
func SortProducts(products []models.Product, sortOption string) []models.Product {
	result := make([]models.Product, len(products))
	copy(result, products)

	switch sortOption {
	case constants.SortOptionPriceAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price.Cmp(result[j].Price) < 0
		})
	case constants.SortOptionPriceDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price.Cmp(result[j].Price) > 0
		})
	case constants.SortOptionRecent:
		// 上架先后以 ID 为准，时间戳相同的批量商品也有确定顺序
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].ID > result[j].ID
		})
	}
	return result
}
