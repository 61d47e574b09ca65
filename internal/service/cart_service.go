package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stg-catalog/internal/logger"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/repository"
)

// CartOwner 购物车归属：登录用户或游客设备，二者取其一
type CartOwner struct {
	UserID   uint
	DeviceID string
}

// IsGuest 是否为游客购物车
func (o CartOwner) IsGuest() bool {
	return o.UserID == 0
}

func (o CartOwner) lockKey() string {
	if o.UserID != 0 {
		return fmt.Sprintf("u:%d", o.UserID)
	}
	return "d:" + o.DeviceID
}

// CartSnapshot 购物车快照（用于响应）
type CartSnapshot struct {
	Items     []models.CartLine `json:"items"`
	ItemCount int               `json:"item_count"`
	Total     models.Money      `json:"total"`
	LoadError bool              `json:"load_error"` // 读取失败时为 true，此时 Items 为空
}

// CartService 购物车服务，所有写操作按归属串行化
type CartService struct {
	cartRepo    repository.CartRepository
	guestRepo   repository.GuestCartRepository
	productRepo repository.ProductRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, guestRepo repository.GuestCartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		guestRepo:   guestRepo,
		productRepo: productRepo,
		locks:       make(map[string]*sync.Mutex),
	}
}

// ownerLock 获取归属级互斥锁，同一归属的写操作串行执行
func (s *CartService) ownerLock(owner CartOwner) *sync.Mutex {
	key := owner.lockKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// buildSnapshot 汇总行列表为快照
func buildSnapshot(lines []models.CartLine) CartSnapshot {
	if lines == nil {
		lines = []models.CartLine{}
	}
	count := 0
	total := models.Zero()
	for _, line := range lines {
		count += line.Quantity
		total = total.Add(line.LineTotal())
	}
	return CartSnapshot{
		Items:     lines,
		ItemCount: count,
		Total:     total,
	}
}

// emptySnapshotWithError 读取失败时的降级快照
func emptySnapshotWithError() CartSnapshot {
	snap := buildSnapshot(nil)
	snap.LoadError = true
	return snap
}

// mapCartRecord 将数据库购物车项转换为统一行结构
func mapCartRecord(item models.CartItem) (models.CartLine, error) {
	if item.Product == nil || item.Product.ID == 0 {
		return models.CartLine{}, fmt.Errorf("cart item %d: %w", item.ID, ErrMalformedRecord)
	}
	return models.CartLine{
		ID:       int64(item.ID),
		Product:  *item.Product,
		Quantity: item.Quantity,
	}, nil
}

// loadRemoteLines 读取登录用户购物车行，损坏行导致整体降级
func (s *CartService) loadRemoteLines(userID uint) ([]models.CartLine, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		line, err := mapCartRecord(item)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Load 读取购物车快照，读取失败降级为空车并置 LoadError
func (s *CartService) Load(ctx context.Context, owner CartOwner) CartSnapshot {
	if owner.IsGuest() {
		lines, err := s.guestRepo.Get(ctx, owner.DeviceID)
		if err != nil {
			logger.Warnw("cart_guest_load_failed", "device_id", owner.DeviceID, "error", err)
			return emptySnapshotWithError()
		}
		return buildSnapshot(lines)
	}
	lines, err := s.loadRemoteLines(owner.UserID)
	if err != nil {
		logger.Warnw("cart_load_failed", "user_id", owner.UserID, "error", err)
		return emptySnapshotWithError()
	}
	return buildSnapshot(lines)
}

// guestLineID 生成游客行ID：毫秒时间戳，与现有行冲突时递增
func guestLineID(lines []models.CartLine) int64 {
	id := time.Now().UnixMilli()
	for {
		conflict := false
		for _, line := range lines {
			if line.ID == id {
				conflict = true
				break
			}
		}
		if !conflict {
			return id
		}
		id++
	}
}

// Add 添加商品：同商品已在车中则数量累加
func (s *CartService) Add(ctx context.Context, owner CartOwner, productID uint, quantity int) (CartSnapshot, error) {
	if quantity <= 0 {
		return CartSnapshot{}, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
	}
	if product == nil {
		return CartSnapshot{}, ErrProductNotFound
	}

	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	if owner.IsGuest() {
		lines, err := s.guestRepo.Get(ctx, owner.DeviceID)
		if err != nil {
			return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
		}
		found := false
		for i := range lines {
			if lines[i].Product.ID == productID {
				lines[i].Quantity += quantity
				found = true
				break
			}
		}
		if !found {
			lines = append(lines, models.CartLine{
				ID:       guestLineID(lines),
				Product:  *product,
				Quantity: quantity,
			})
		}
		if err := s.guestRepo.Save(ctx, owner.DeviceID, lines); err != nil {
			return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
		}
		return buildSnapshot(lines), nil
	}

	existing, err := s.cartRepo.GetByUserAndProduct(owner.UserID, productID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
	}
	newQty := quantity
	if existing != nil {
		newQty += existing.Quantity
	}
	now := time.Now()
	item := &models.CartItem{
		UserID:    owner.UserID,
		ProductID: productID,
		Quantity:  newQty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
	}
	lines, err := s.loadRemoteLines(owner.UserID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
	}
	return buildSnapshot(lines), nil
}

// UpdateQuantity 更新行数量，数量小于等于零等价于删除
func (s *CartService) UpdateQuantity(ctx context.Context, owner CartOwner, lineID int64, quantity int) (CartSnapshot, error) {
	if quantity <= 0 {
		return s.Remove(ctx, owner, lineID)
	}

	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	if owner.IsGuest() {
		lines, err := s.guestRepo.Get(ctx, owner.DeviceID)
		if err != nil {
			return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
		}
		for i := range lines {
			if lines[i].ID == lineID {
				lines[i].Quantity = quantity
				break
			}
		}
		if err := s.guestRepo.Save(ctx, owner.DeviceID, lines); err != nil {
			return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
		}
		return buildSnapshot(lines), nil
	}

	item, err := s.cartRepo.GetByID(owner.UserID, uint(lineID))
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
	}
	if item != nil {
		if err := s.cartRepo.UpdateQuantity(owner.UserID, uint(lineID), quantity); err != nil {
			return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
		}
	}
	lines, err := s.loadRemoteLines(owner.UserID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
	}
	return buildSnapshot(lines), nil
}

// Remove 删除购物车行，行不存在时为空操作
func (s *CartService) Remove(ctx context.Context, owner CartOwner, lineID int64) (CartSnapshot, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	if owner.IsGuest() {
		lines, err := s.guestRepo.Get(ctx, owner.DeviceID)
		if err != nil {
			return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
		}
		kept := make([]models.CartLine, 0, len(lines))
		for _, line := range lines {
			if line.ID != lineID {
				kept = append(kept, line)
			}
		}
		if err := s.guestRepo.Save(ctx, owner.DeviceID, kept); err != nil {
			return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
		}
		return buildSnapshot(kept), nil
	}

	if err := s.cartRepo.DeleteByID(owner.UserID, uint(lineID)); err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
	}
	lines, err := s.loadRemoteLines(owner.UserID)
	if err != nil {
		return CartSnapshot{}, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
	}
	return buildSnapshot(lines), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, owner CartOwner) error {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	if owner.IsGuest() {
		if err := s.guestRepo.Clear(ctx, owner.DeviceID); err != nil {
			return fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
		}
		return nil
	}
	if err := s.cartRepo.ClearByUser(owner.UserID); err != nil {
		return fmt.Errorf("%w: %v", ErrCartMutationFailed, err)
	}
	return nil
}

// MergeGuestCart 登录时合并游客购物车：同商品数量相加，其余追加
// 返回合并后的快照与合并失败的商品ID；全部成功才清空游客槽位，
// 否则槽位只保留失败的行，避免丢失
func (s *CartService) MergeGuestCart(ctx context.Context, userID uint, deviceID string) (CartSnapshot, []uint, error) {
	if userID == 0 || deviceID == "" {
		return buildSnapshot(nil), nil, nil
	}

	lock := s.ownerLock(CartOwner{UserID: userID})
	lock.Lock()
	defer lock.Unlock()

	guestLines, err := s.guestRepo.Get(ctx, deviceID)
	if err != nil {
		return CartSnapshot{}, nil, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
	}
	if len(guestLines) == 0 {
		lines, err := s.loadRemoteLines(userID)
		if err != nil {
			return CartSnapshot{}, nil, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
		}
		return buildSnapshot(lines), nil, nil
	}

	failed := make([]uint, 0)
	remainder := make([]models.CartLine, 0)
	for _, line := range guestLines {
		if line.Product.ID == 0 || line.Quantity <= 0 {
			continue
		}
		existing, err := s.cartRepo.GetByUserAndProduct(userID, line.Product.ID)
		if err != nil {
			failed = append(failed, line.Product.ID)
			remainder = append(remainder, line)
			continue
		}
		newQty := line.Quantity
		if existing != nil {
			newQty += existing.Quantity
		}
		now := time.Now()
		item := &models.CartItem{
			UserID:    userID,
			ProductID: line.Product.ID,
			Quantity:  newQty,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.cartRepo.Upsert(item); err != nil {
			logger.Warnw("cart_merge_item_failed",
				"user_id", userID,
				"product_id", line.Product.ID,
				"error", err,
			)
			failed = append(failed, line.Product.ID)
			remainder = append(remainder, line)
		}
	}

	if len(failed) == 0 {
		if err := s.guestRepo.Clear(ctx, deviceID); err != nil {
			logger.Warnw("cart_merge_clear_guest_failed", "device_id", deviceID, "error", err)
		}
	} else {
		if err := s.guestRepo.Save(ctx, deviceID, remainder); err != nil {
			logger.Warnw("cart_merge_save_remainder_failed", "device_id", deviceID, "error", err)
		}
	}

	lines, err := s.loadRemoteLines(userID)
	if err != nil {
		return CartSnapshot{}, failed, fmt.Errorf("%w: %v", ErrCartLoadFailed, err)
	}
	return buildSnapshot(lines), failed, nil
}
