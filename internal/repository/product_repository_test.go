package repository

import (
	"testing"

	"github.com/stg-catalog/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewProductRepository(db), db
}

func TestProductRepositoryListActive(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)

	active := &models.Product{Name: "List Produto Ativo", Category: "beleza", Price: models.NewMoneyFromFloat(10), IsActive: true}
	inactive := &models.Product{Name: "List Produto Inativo", Category: "beleza", Price: models.NewMoneyFromFloat(10), IsActive: false}
	for _, p := range []*models.Product{active, inactive} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	products, err := repo.ListActive()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	seen := make(map[uint]bool)
	for _, p := range products {
		seen[p.ID] = true
		if !p.IsActive {
			t.Fatalf("inactive product leaked into listing: %+v", p)
		}
	}
	if !seen[active.ID] {
		t.Fatalf("active product missing from listing")
	}
	if seen[inactive.ID] {
		t.Fatalf("inactive product must not be listed")
	}
}

func TestProductRepositoryGetByID(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)

	active := &models.Product{Name: "Get Produto Ativo", Category: "moda", Price: models.NewMoneyFromFloat(59.9), IsActive: true}
	inactive := &models.Product{Name: "Get Produto Inativo", Category: "moda", Price: models.NewMoneyFromFloat(59.9), IsActive: false}
	for _, p := range []*models.Product{active, inactive} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	got, err := repo.GetByID(active.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.ID != active.ID {
		t.Fatalf("want product %d got %+v", active.ID, got)
	}
	if got.Price.String() != "59.90" {
		t.Fatalf("price must survive the round trip, got %s", got.Price)
	}

	// 下架与不存在的商品都返回 nil
	if got, err := repo.GetByID(inactive.ID); err != nil || got != nil {
		t.Fatalf("inactive product must return nil, got %+v %v", got, err)
	}
	if got, err := repo.GetByID(999999); err != nil || got != nil {
		t.Fatalf("missing product must return nil, got %+v %v", got, err)
	}
}

func TestProductRepositoryGetByName(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)

	product := &models.Product{Name: "Seed Produto Nome", Category: "acessorios", Price: models.NewMoneyFromFloat(5), IsActive: false}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	// 名称查询不区分上下架状态，用于幂等种子写入
	got, err := repo.GetByName("Seed Produto Nome")
	if err != nil {
		t.Fatalf("get by name failed: %v", err)
	}
	if got == nil || got.ID != product.ID {
		t.Fatalf("want product %d got %+v", product.ID, got)
	}

	if got, err := repo.GetByName("Produto Inexistente"); err != nil || got != nil {
		t.Fatalf("missing name must return nil, got %+v %v", got, err)
	}
}
