package repository

import (
	"github.com/stg-catalog/internal/models"

	"gorm.io/gorm"
)

// CheckoutLogRepository 下单审计日志数据访问接口
type CheckoutLogRepository interface {
	Create(log *models.CheckoutLog) error
	ListByUser(userID uint, limit int) ([]models.CheckoutLog, error)
}

// GormCheckoutLogRepository GORM 实现
type GormCheckoutLogRepository struct {
	db *gorm.DB
}

// NewCheckoutLogRepository 创建下单审计日志仓库
func NewCheckoutLogRepository(db *gorm.DB) *GormCheckoutLogRepository {
	return &GormCheckoutLogRepository{db: db}
}

// Create 写入审计记录
func (r *GormCheckoutLogRepository) Create(log *models.CheckoutLog) error {
	return r.db.Create(log).Error
}

// ListByUser 获取用户最近的下单记录
func (r *GormCheckoutLogRepository) ListByUser(userID uint, limit int) ([]models.CheckoutLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []models.CheckoutLog
	if err := r.db.Where("user_id = ?", userID).Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
