package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/stg-catalog/internal/cache"
	"github.com/stg-catalog/internal/constants"
	"github.com/stg-catalog/internal/logger"
	"github.com/stg-catalog/internal/models"

	"github.com/redis/go-redis/v9"
)

// GuestCartRepository 游客购物车槽位访问接口
// 每个设备一个槽位，整槽读写，内容为购物车行列表
type GuestCartRepository interface {
	Get(ctx context.Context, deviceID string) ([]models.CartLine, error)
	Save(ctx context.Context, deviceID string, lines []models.CartLine) error
	Clear(ctx context.Context, deviceID string) error
}

// decodeGuestLines 解析槽位内容，损坏的载荷按空槽处理
func decodeGuestLines(payload []byte, deviceID string) []models.CartLine {
	if len(payload) == 0 {
		return []models.CartLine{}
	}
	var lines []models.CartLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		logger.Warnw("guest_cart_payload_malformed",
			"device_id", deviceID,
			"error", err,
		)
		return []models.CartLine{}
	}
	if lines == nil {
		return []models.CartLine{}
	}
	return lines
}

// RedisGuestCartRepository Redis 实现
type RedisGuestCartRepository struct {
	ttl time.Duration
}

// NewRedisGuestCartRepository 创建 Redis 游客购物车仓库
func NewRedisGuestCartRepository(ttl time.Duration) *RedisGuestCartRepository {
	return &RedisGuestCartRepository{ttl: ttl}
}

func guestCartKey(deviceID string) string {
	return cache.Key(fmt.Sprintf("%s:%s", constants.GuestCartKeyPrefix, deviceID))
}

// Get 读取槽位内容
func (r *RedisGuestCartRepository) Get(ctx context.Context, deviceID string) ([]models.CartLine, error) {
	client := cache.Client()
	if client == nil {
		return []models.CartLine{}, nil
	}
	payload, err := client.Get(ctx, guestCartKey(deviceID)).Bytes()
	if err == redis.Nil {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeGuestLines(payload, deviceID), nil
}

// Save 覆盖写入槽位内容
func (r *RedisGuestCartRepository) Save(ctx context.Context, deviceID string, lines []models.CartLine) error {
	client := cache.Client()
	if client == nil {
		return nil
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return client.Set(ctx, guestCartKey(deviceID), payload, r.ttl).Err()
}

// Clear 清空槽位
func (r *RedisGuestCartRepository) Clear(ctx context.Context, deviceID string) error {
	client := cache.Client()
	if client == nil {
		return nil
	}
	return client.Del(ctx, guestCartKey(deviceID)).Err()
}

// MemoryGuestCartRepository 内存实现，用于测试与未启用 Redis 的部署
type MemoryGuestCartRepository struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryGuestCartRepository 创建内存游客购物车仓库
func NewMemoryGuestCartRepository() *MemoryGuestCartRepository {
	return &MemoryGuestCartRepository{slots: make(map[string][]byte)}
}

// Get 读取槽位内容
func (r *MemoryGuestCartRepository) Get(_ context.Context, deviceID string) ([]models.CartLine, error) {
	r.mu.RLock()
	payload, ok := r.slots[deviceID]
	r.mu.RUnlock()
	if !ok {
		return []models.CartLine{}, nil
	}
	return decodeGuestLines(payload, deviceID), nil
}

// Save 覆盖写入槽位内容
func (r *MemoryGuestCartRepository) Save(_ context.Context, deviceID string, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.slots[deviceID] = payload
	r.mu.Unlock()
	return nil
}

// Clear 清空槽位
func (r *MemoryGuestCartRepository) Clear(_ context.Context, deviceID string) error {
	r.mu.Lock()
	delete(r.slots, deviceID)
	r.mu.Unlock()
	return nil
}

// SaveRaw 直接写入原始载荷，仅测试损坏数据场景使用
func (r *MemoryGuestCartRepository) SaveRaw(deviceID string, payload []byte) {
	r.mu.Lock()
	r.slots[deviceID] = payload
	r.mu.Unlock()
}
