package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *repository.MemoryGuestCartRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	guestRepo := repository.NewMemoryGuestCartRepository()
	svc := NewCartService(
		repository.NewCartRepository(db),
		guestRepo,
		repository.NewProductRepository(db),
	)
	return svc, guestRepo, db
}

func createCartTestProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Category: "eletronicos",
		Price:    models.NewMoneyFromFloat(price),
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestCartServiceGuestAddAccumulates(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{DeviceID: "device-guest-add"}

	a := createCartTestProduct(t, db, "Guest Add Produto A", 19.9)
	b := createCartTestProduct(t, db, "Guest Add Produto B", 10)

	snap, err := svc.Add(ctx, owner, a.ID, 2)
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
		t.Fatalf("want single line qty 2 got %+v", snap.Items)
	}

	snap, err = svc.Add(ctx, owner, a.ID, 1)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 3 {
		t.Fatalf("same product must accumulate on one line, got %+v", snap.Items)
	}

	snap, err = svc.Add(ctx, owner, b.ID, 1)
	if err != nil {
		t.Fatalf("add second product failed: %v", err)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("want 2 lines got %d", len(snap.Items))
	}
	if snap.ItemCount != 4 {
		t.Fatalf("want item count 4 got %d", snap.ItemCount)
	}
	if snap.Total.String() != "69.70" {
		t.Fatalf("want total 69.70 got %s", snap.Total)
	}
}

func TestCartServiceAddValidation(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{DeviceID: "device-add-validation"}

	product := createCartTestProduct(t, db, "Validation Produto", 5)

	if _, err := svc.Add(ctx, owner, product.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero quantity want ErrInvalidQuantity got %v", err)
	}
	if _, err := svc.Add(ctx, owner, product.ID, -3); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("negative quantity want ErrInvalidQuantity got %v", err)
	}
	if _, err := svc.Add(ctx, owner, 999999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("unknown product want ErrProductNotFound got %v", err)
	}
}

func TestCartServiceGuestUpdateAndRemove(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{DeviceID: "device-guest-update"}

	product := createCartTestProduct(t, db, "Guest Update Produto", 30)

	snap, err := svc.Add(ctx, owner, product.ID, 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	lineID := snap.Items[0].ID

	snap, err = svc.UpdateQuantity(ctx, owner, lineID, 5)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if snap.Items[0].Quantity != 5 {
		t.Fatalf("want qty 5 got %d", snap.Items[0].Quantity)
	}
	if snap.Total.String() != "150.00" {
		t.Fatalf("want total 150.00 got %s", snap.Total)
	}

	// 删除不存在的行是空操作
	snap, err = svc.Remove(ctx, owner, lineID+12345)
	if err != nil {
		t.Fatalf("remove unknown line failed: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("remove unknown line must keep cart, got %d lines", len(snap.Items))
	}

	// 数量归零等价于删除
	snap, err = svc.UpdateQuantity(ctx, owner, lineID, 0)
	if err != nil {
		t.Fatalf("update to zero failed: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("zero quantity must remove the line, got %+v", snap.Items)
	}
}

func TestCartServiceAuthAddUpsert(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{UserID: 501}

	product := createCartTestProduct(t, db, "Auth Upsert Produto", 25)

	if _, err := svc.Add(ctx, owner, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	snap, err := svc.Add(ctx, owner, product.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 5 {
		t.Fatalf("want single line qty 5 got %+v", snap.Items)
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", owner.UserID).Count(&count).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("want 1 cart row got %d", count)
	}

	// 总价按商品当前价格计算
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", models.NewMoneyFromFloat(30)).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	snap = svc.Load(ctx, owner)
	if snap.Total.String() != "150.00" {
		t.Fatalf("total must follow current price, want 150.00 got %s", snap.Total)
	}
}

func TestCartServiceAuthConcurrentAdd(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{UserID: 502}

	product := createCartTestProduct(t, db, "Concurrent Add Produto", 1)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Add(ctx, owner, product.ID, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent add failed: %v", err)
	}

	snap := svc.Load(ctx, owner)
	if len(snap.Items) != 1 || snap.Items[0].Quantity != workers {
		t.Fatalf("want single line qty %d got %+v", workers, snap.Items)
	}
}

func TestCartServiceAuthUpdateMissingLine(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{UserID: 503}

	product := createCartTestProduct(t, db, "Auth Missing Line Produto", 12)
	if _, err := svc.Add(ctx, owner, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	snap, err := svc.UpdateQuantity(ctx, owner, 987654, 9)
	if err != nil {
		t.Fatalf("update missing line failed: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 1 {
		t.Fatalf("missing line update must be a no-op, got %+v", snap.Items)
	}
}

func TestCartServiceLoadErrorOnMalformedRecord(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{UserID: 504}

	// 商品已不存在的残留行
	if err := db.Create(&models.CartItem{UserID: owner.UserID, ProductID: 888888, Quantity: 1}).Error; err != nil {
		t.Fatalf("create orphan cart item failed: %v", err)
	}

	snap := svc.Load(ctx, owner)
	if !snap.LoadError {
		t.Fatalf("orphan record must set LoadError")
	}
	if len(snap.Items) != 0 || snap.ItemCount != 0 || !snap.Total.IsZero() {
		t.Fatalf("degraded snapshot must be empty, got %+v", snap)
	}
}

func TestCartServiceGuestMalformedPayload(t *testing.T) {
	svc, guestRepo, db := setupCartServiceTest(t)
	ctx := context.Background()
	owner := CartOwner{DeviceID: "device-malformed"}

	guestRepo.SaveRaw(owner.DeviceID, []byte("{not json"))

	// 损坏槽位按空车处理，不算读取失败
	snap := svc.Load(ctx, owner)
	if snap.LoadError {
		t.Fatalf("malformed payload must degrade to empty cart, not LoadError")
	}
	if len(snap.Items) != 0 {
		t.Fatalf("want empty cart got %+v", snap.Items)
	}

	product := createCartTestProduct(t, db, "Malformed Recovery Produto", 7)
	snap, err := svc.Add(ctx, owner, product.ID, 1)
	if err != nil {
		t.Fatalf("add after malformed payload failed: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("add must overwrite malformed slot, got %+v", snap.Items)
	}
}

func TestCartServiceMergeGuestCart(t *testing.T) {
	svc, guestRepo, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(505)
	deviceID := "device-merge"

	a := createCartTestProduct(t, db, "Merge Produto A", 10)
	b := createCartTestProduct(t, db, "Merge Produto B", 20)

	if _, err := svc.Add(ctx, CartOwner{UserID: userID}, a.ID, 2); err != nil {
		t.Fatalf("seed remote cart failed: %v", err)
	}
	guest := CartOwner{DeviceID: deviceID}
	if _, err := svc.Add(ctx, guest, a.ID, 1); err != nil {
		t.Fatalf("seed guest cart failed: %v", err)
	}
	if _, err := svc.Add(ctx, guest, b.ID, 1); err != nil {
		t.Fatalf("seed guest cart failed: %v", err)
	}

	snap, failed, err := svc.MergeGuestCart(ctx, userID, deviceID)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("want no failed products got %v", failed)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("want 2 merged lines got %+v", snap.Items)
	}
	quantities := make(map[uint]int)
	for _, line := range snap.Items {
		quantities[line.Product.ID] = line.Quantity
	}
	if quantities[a.ID] != 3 || quantities[b.ID] != 1 {
		t.Fatalf("merge must sum quantities per product, got %v", quantities)
	}

	// 全部合并成功后游客槽位被清空
	remaining, err := guestRepo.Get(ctx, deviceID)
	if err != nil {
		t.Fatalf("read guest slot failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("guest slot must be cleared after full merge, got %+v", remaining)
	}
}

func TestCartServiceMergeEmptyInputs(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(506)

	product := createCartTestProduct(t, db, "Merge Empty Produto", 15)
	if _, err := svc.Add(ctx, CartOwner{UserID: userID}, product.ID, 1); err != nil {
		t.Fatalf("seed remote cart failed: %v", err)
	}

	snap, failed, err := svc.MergeGuestCart(ctx, userID, "")
	if err != nil || failed != nil {
		t.Fatalf("merge without device must be a no-op, got %v %v", failed, err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("merge without device returns empty snapshot, got %+v", snap.Items)
	}

	snap, failed, err = svc.MergeGuestCart(ctx, userID, "device-merge-empty")
	if err != nil {
		t.Fatalf("merge with empty guest slot failed: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("want no failed products got %v", failed)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("merge with empty slot must return remote cart, got %+v", snap.Items)
	}
}

func TestCartServiceClear(t *testing.T) {
	svc, _, db := setupCartServiceTest(t)
	ctx := context.Background()

	product := createCartTestProduct(t, db, "Clear Produto", 3)

	for i, owner := range []CartOwner{{UserID: 507}, {DeviceID: "device-clear"}} {
		if _, err := svc.Add(ctx, owner, product.ID, 2); err != nil {
			t.Fatalf("case %d add failed: %v", i, err)
		}
		if err := svc.Clear(ctx, owner); err != nil {
			t.Fatalf("case %d clear failed: %v", i, err)
		}
		snap := svc.Load(ctx, owner)
		if len(snap.Items) != 0 {
			t.Fatalf("case %d cart must be empty after clear, got %+v", i, snap.Items)
		}
	}
}
