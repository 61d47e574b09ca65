package public

import (
	"errors"
	"strings"

	"github.com/stg-catalog/internal/constants"
	handlershared "github.com/stg-catalog/internal/http/handlers/shared"
	"github.com/stg-catalog/internal/http/response"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func buildUserPayload(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
	}
}

// mergeGuestCartIfPresent 登录/注册成功后合并游客购物车
func (h *Handler) mergeGuestCartIfPresent(c *gin.Context, userID uint) gin.H {
	deviceID := strings.TrimSpace(c.GetHeader(constants.DeviceIDHeader))
	if deviceID == "" || len(deviceID) > constants.DeviceIDMaxLength {
		return nil
	}
	snapshot, failed, err := h.CartService.MergeGuestCart(c.Request.Context(), userID, deviceID)
	if err != nil {
		handlershared.RequestLog(c).Warnw("guest_cart_merge_failed",
			"user_id", userID,
			"device_id", deviceID,
			"error", err,
		)
		return nil
	}
	return gin.H{
		"cart":       snapshot,
		"merged":     len(failed) == 0,
		"failed_ids": failed,
	}
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "invalid email", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "email already registered", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "register failed", err)
		}
		return
	}

	data := gin.H{
		"user":       buildUserPayload(user),
		"token":      token,
		"expires_at": expiresAt.Unix(),
	}
	if merge := h.mergeGuestCartIfPresent(c, user.ID); merge != nil {
		data["guest_cart"] = merge
	}
	response.Success(c, data)
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "invalid email", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "account disabled", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	data := gin.H{
		"user":       buildUserPayload(user),
		"token":      token,
		"expires_at": expiresAt.Unix(),
	}
	if merge := h.mergeGuestCartIfPresent(c, user.ID); merge != nil {
		data["guest_cart"] = merge
	}
	response.Success(c, data)
}

// UserLogout 用户注销
func (h *Handler) UserLogout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.UserAuthService.Logout(uid); err != nil {
		respondError(c, response.CodeInternal, "logout failed", err)
		return
	}
	response.Success(c, gin.H{"logged_out": true})
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil || user == nil {
		respondError(c, response.CodeUnauthorized, "unauthorized", err)
		return
	}
	response.Success(c, buildUserPayload(user))
}
