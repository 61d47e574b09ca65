package public

import (
	"strings"

	handlershared "github.com/stg-catalog/internal/http/handlers/shared"
	"github.com/stg-catalog/internal/http/response"
	"github.com/stg-catalog/internal/service"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func getDeviceID(c *gin.Context) string {
	if value, ok := c.Get("device_id"); ok {
		if id, ok := value.(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

// getOwner 解析购物车归属：登录用户优先，其次游客设备
func getOwner(c *gin.Context) (service.CartOwner, bool) {
	if value, ok := c.Get("user_id"); ok {
		if uid, ok := value.(uint); ok && uid != 0 {
			return service.CartOwner{UserID: uid}, true
		}
	}
	if deviceID := getDeviceID(c); deviceID != "" {
		return service.CartOwner{DeviceID: deviceID}, true
	}
	handlershared.RespondError(c, response.CodeBadRequest, "missing cart identity", nil)
	return service.CartOwner{}, false
}
