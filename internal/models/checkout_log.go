package models

import (
	"time"
)

// CheckoutLog 下单转发审计日志
type CheckoutLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`                            // 主键
	UserID        uint      `gorm:"not null;index" json:"user_id"`                   // 下单用户ID
	DeviceID      string    `gorm:"type:varchar(64);index" json:"device_id"`         // 游客设备ID（如有）
	CustomerName  string    `gorm:"type:varchar(120)" json:"customer_name"`          // 客户姓名
	CustomerEmail string    `gorm:"type:varchar(200)" json:"customer_email"`         // 客户邮箱
	ItemCount     int       `gorm:"not null" json:"item_count"`                      // 商品行数
	TotalAmount   Money     `gorm:"type:decimal(20,2);not null" json:"total_amount"` // 订单总额
	Message       string    `gorm:"type:text" json:"message"`                        // 转发的订单消息原文
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                         // 创建时间
}

// TableName 指定表名
func (CheckoutLog) TableName() string {
	return "checkout_logs"
}
