package public

import (
	"errors"
	"strconv"

	"github.com/stg-catalog/internal/http/response"
	"github.com/stg-catalog/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProducts 获取商品列表，支持分类、搜索与排序
func (h *Handler) GetProducts(c *gin.Context) {
	query := service.CatalogQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	products, err := h.CatalogService.Browse(c.Request.Context(), query)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load products", err)
		return
	}
	response.Success(c, gin.H{
		"items": products,
		"total": len(products),
	})
}

// GetProduct 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	rawID := c.Param("id")
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	product, err := h.CatalogService.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load product", err)
		return
	}
	response.Success(c, product)
}
