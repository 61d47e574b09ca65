package main

import (
	"github.com/stg-catalog/internal/config"
	"github.com/stg-catalog/internal/logger"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/repository"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 示例商品（幂等：按名称去重）
	products := []models.Product{
		{
			Name:        "Smartphone Galaxy A54",
			Description: "Tela 6.4\" Super AMOLED, 128GB, câmera tripla de 50MP.",
			Category:    "eletronicos",
			Price:       models.NewMoney(decimal.NewFromFloat(1899.90)),
			ImageURL:    "https://images.example.com/products/galaxy-a54.jpg",
			IsActive:    true,
		},
		{
			Name:        "Fone Bluetooth TWS",
			Description: "Cancelamento de ruído ativo, estojo com carregamento rápido.",
			Category:    "eletronicos",
			Price:       models.NewMoney(decimal.NewFromFloat(249.90)),
			ImageURL:    "https://images.example.com/products/fone-tws.jpg",
			IsActive:    true,
		},
		{
			Name:        "Cafeteira Elétrica 30 Xícaras",
			Description: "Jarra de vidro, sistema corta-pingos, 800W.",
			Category:    "casa",
			Price:       models.NewMoney(decimal.NewFromFloat(159.00)),
			ImageURL:    "https://images.example.com/products/cafeteira.jpg",
			IsActive:    true,
		},
		{
			Name:        "Jogo de Panelas Antiaderente 5 Peças",
			Description: "Revestimento cerâmico, cabos anatômicos.",
			Category:    "casa",
			Price:       models.NewMoney(decimal.NewFromFloat(329.90)),
			ImageURL:    "https://images.example.com/products/panelas.jpg",
			IsActive:    true,
		},
		{
			Name:        "Camiseta Básica Algodão",
			Description: "100% algodão penteado, várias cores.",
			Category:    "moda",
			Price:       models.NewMoney(decimal.NewFromFloat(49.90)),
			ImageURL:    "https://images.example.com/products/camiseta.jpg",
			IsActive:    true,
		},
		{
			Name:        "Tênis Esportivo Runner",
			Description: "Solado em EVA, malha respirável, ideal para corrida.",
			Category:    "moda",
			Price:       models.NewMoney(decimal.NewFromFloat(219.90)),
			ImageURL:    "https://images.example.com/products/tenis-runner.jpg",
			IsActive:    true,
		},
		{
			Name:        "Mochila Executiva Impermeável",
			Description: "Compartimento para notebook 15.6\", porta USB externa.",
			Category:    "acessorios",
			Price:       models.NewMoney(decimal.NewFromFloat(139.90)),
			ImageURL:    "https://images.example.com/products/mochila.jpg",
			IsActive:    true,
		},
		{
			Name:        "Kit Skincare Facial",
			Description: "Sabonete, tônico e hidratante para todos os tipos de pele.",
			Category:    "beleza",
			Price:       models.NewMoney(decimal.NewFromFloat(89.90)),
			ImageURL:    "https://images.example.com/products/skincare.jpg",
			IsActive:    true,
		},
	}

	productRepo := repository.NewProductRepository(models.DB)
	for _, p := range products {
		existing, err := productRepo.GetByName(p.Name)
		if err != nil {
			stdLog.Printf("Failed to query product %s: %v", p.Name, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Product already exists: %s", p.Name)
			continue
		}
		if err := productRepo.Create(&p); err != nil {
			stdLog.Printf("Failed to create product %s: %v", p.Name, err)
		} else {
			stdLog.Printf("Created product: %s", p.Name)
		}
	}

	stdLog.Printf("Seed finished")
}
