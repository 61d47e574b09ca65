package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 登录用户购物车项
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                         // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // 用户ID
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // 商品ID
	Quantity  int            `gorm:"not null" json:"quantity"`                                     // 数量
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine 购物车统一行结构，游客槽位与登录购物车共用
type CartLine struct {
	ID       int64   `json:"id"`       // 行ID：登录态为 cart_items 主键，游客态为本地生成ID
	Product  Product `json:"product"`  // 商品快照
	Quantity int     `json:"quantity"` // 数量
}

// LineTotal 行小计
func (l CartLine) LineTotal() Money {
	return l.Product.Price.MulInt(int64(l.Quantity))
}
