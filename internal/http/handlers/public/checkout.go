package public

import (
	"errors"

	"github.com/stg-catalog/internal/http/response"
	"github.com/stg-catalog/internal/service"

	"github.com/gin-gonic/gin"
)

// Checkout 确认下单：生成 WhatsApp 订单深链并按配置清空购物车
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil || user == nil {
		respondError(c, response.CodeUnauthorized, "unauthorized", err)
		return
	}

	result, err := h.CheckoutService.Confirm(c.Request.Context(), user, getDeviceID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "cart is empty", nil)
		case errors.Is(err, service.ErrCheckoutUnavailable):
			respondError(c, response.CodeInternal, "checkout is not configured", nil)
		case errors.Is(err, service.ErrCartLoadFailed):
			respondError(c, response.CodeInternal, "failed to load cart", err)
		default:
			respondError(c, response.CodeInternal, "checkout failed", err)
		}
		return
	}
	response.Success(c, result)
}

// GetCheckoutHistory 获取当前用户最近的下单记录
func (h *Handler) GetCheckoutHistory(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	logs, err := h.CheckoutLogRepo.ListByUser(uid, 20)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load checkout history", err)
		return
	}
	response.Success(c, gin.H{"items": logs})
}
