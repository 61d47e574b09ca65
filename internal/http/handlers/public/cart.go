package public

import (
	"errors"
	"strconv"

	"github.com/stg-catalog/internal/http/response"
	"github.com/stg-catalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AddCartItemRequest 添加购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartItemRequest 更新购物车数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// IssueDeviceID 为游客签发设备标识
func (h *Handler) IssueDeviceID(c *gin.Context) {
	response.Success(c, gin.H{"device_id": uuid.NewString()})
}

// GetCart 获取购物车快照
func (h *Handler) GetCart(c *gin.Context) {
	owner, ok := getOwner(c)
	if !ok {
		return
	}
	snapshot := h.CartService.Load(c.Request.Context(), owner)
	response.Success(c, snapshot)
}

// AddCartItem 添加商品到购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	owner, ok := getOwner(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	snapshot, err := h.CartService.Add(c.Request.Context(), owner, req.ProductID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			respondError(c, response.CodeBadRequest, "invalid quantity", nil)
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update cart", err)
		}
		return
	}
	response.Success(c, snapshot)
}

// UpdateCartItem 更新购物车行数量，数量小于等于零等价于删除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	owner, ok := getOwner(c)
	if !ok {
		return
	}
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || lineID == 0 {
		respondError(c, response.CodeBadRequest, "invalid cart line id", nil)
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	snapshot, err := h.CartService.UpdateQuantity(c.Request.Context(), owner, lineID, req.Quantity)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, snapshot)
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	owner, ok := getOwner(c)
	if !ok {
		return
	}
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || lineID == 0 {
		respondError(c, response.CodeBadRequest, "invalid cart line id", nil)
		return
	}
	snapshot, err := h.CartService.Remove(c.Request.Context(), owner, lineID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to update cart", err)
		return
	}
	response.Success(c, snapshot)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	owner, ok := getOwner(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), owner); err != nil {
		respondError(c, response.CodeInternal, "failed to clear cart", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
