package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stg-catalog/internal/config"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/queue"

	"gorm.io/gorm"
)

func setupCheckoutServiceTest(t *testing.T, cfg config.CheckoutConfig) (*CheckoutService, *CartService, *gorm.DB) {
	t.Helper()
	cartService, _, db := setupCartServiceTest(t)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	return NewCheckoutService(cartService, queueClient, cfg), cartService, db
}

func TestCheckoutServiceBuildOrderMessage(t *testing.T) {
	svc, _, _ := setupCheckoutServiceTest(t, config.CheckoutConfig{
		WhatsAppNumber: "5511999999999",
		StoreName:      "LOJA TESTE",
	})

	lines := []models.CartLine{
		{ID: 1, Product: models.Product{ID: 1, Name: "Widget", Price: models.NewMoneyFromFloat(10)}, Quantity: 2},
		{ID: 2, Product: models.Product{ID: 2, Name: "Gadget", Price: models.NewMoneyFromFloat(1234.5)}, Quantity: 1},
	}
	total := models.NewMoneyFromFloat(1254.5)

	message := svc.BuildOrderMessage("Maria Silva", "maria@example.com", lines, total)

	for _, want := range []string{
		"*NOVO PEDIDO - LOJA TESTE*",
		"*Cliente:* Maria Silva",
		"*Email:* maria@example.com",
		"*PRODUTOS:*",
		"- Widget - Qtd: 2 - R$ 10,00",
		"- Gadget - Qtd: 1 - R$ 1.234,50",
		"*TOTAL: R$ 1.254,50*",
		"Pedido realizado via STG Catalog Link wa.me automático",
	} {
		if !strings.Contains(message, want) {
			t.Fatalf("message missing %q:\n%s", want, message)
		}
	}

	// 姓名与邮箱缺失时使用占位文案
	message = svc.BuildOrderMessage("", "  ", lines, total)
	if !strings.Contains(message, "*Cliente:* Cliente não informado") {
		t.Fatalf("missing name fallback:\n%s", message)
	}
	if !strings.Contains(message, "*Email:* Email não informado") {
		t.Fatalf("missing email fallback:\n%s", message)
	}
}

func TestCheckoutServiceBuildWhatsAppURL(t *testing.T) {
	svc, _, _ := setupCheckoutServiceTest(t, config.CheckoutConfig{WhatsAppNumber: "5511999999999"})

	got := svc.BuildWhatsAppURL("NOVO PEDIDO - Loja")
	if !strings.HasPrefix(got, "https://wa.me/5511999999999?text=") {
		t.Fatalf("unexpected url prefix: %s", got)
	}
	// 空格编码为 %20，不使用 +
	if strings.Contains(got, "+") {
		t.Fatalf("url must not contain plus signs: %s", got)
	}
	if !strings.Contains(got, "NOVO%20PEDIDO%20-%20Loja") {
		t.Fatalf("spaces must encode as %%20: %s", got)
	}
}

func TestCheckoutServiceConfirm(t *testing.T) {
	svc, cartService, db := setupCheckoutServiceTest(t, config.CheckoutConfig{
		WhatsAppNumber: "5511999999999",
		StoreName:      "LOJA TESTE",
		ClearOnHandoff: true,
	})
	ctx := context.Background()
	user := &models.User{ID: 601, Email: "confirm@example.com", DisplayName: "Confirm User"}

	if _, err := svc.Confirm(ctx, nil, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("nil user want ErrInvalidCredentials got %v", err)
	}
	if _, err := svc.Confirm(ctx, user, ""); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart want ErrCartEmpty got %v", err)
	}

	product := createCartTestProduct(t, db, "Confirm Produto", 49.9)
	if _, err := cartService.Add(ctx, CartOwner{UserID: user.ID}, product.ID, 2); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}

	result, err := svc.Confirm(ctx, user, "device-confirm")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if result.ItemCount != 2 {
		t.Fatalf("want item count 2 got %d", result.ItemCount)
	}
	if result.Total.String() != "99.80" {
		t.Fatalf("want total 99.80 got %s", result.Total)
	}
	if !strings.Contains(result.Message, "- Confirm Produto - Qtd: 2 - R$ 49,90") {
		t.Fatalf("message missing product line:\n%s", result.Message)
	}
	if !strings.HasPrefix(result.WhatsAppURL, "https://wa.me/5511999999999?text=") {
		t.Fatalf("unexpected url: %s", result.WhatsAppURL)
	}
	if !result.CartCleared {
		t.Fatalf("cart must be cleared on handoff")
	}
	snap := cartService.Load(ctx, CartOwner{UserID: user.ID})
	if len(snap.Items) != 0 {
		t.Fatalf("cart must be empty after confirm, got %+v", snap.Items)
	}
}

func TestCheckoutServiceConfirmKeepCart(t *testing.T) {
	svc, cartService, db := setupCheckoutServiceTest(t, config.CheckoutConfig{
		WhatsAppNumber: "5511999999999",
		ClearOnHandoff: false,
	})
	ctx := context.Background()
	user := &models.User{ID: 602, Email: "keep@example.com", DisplayName: "Keep User"}

	product := createCartTestProduct(t, db, "Keep Cart Produto", 10)
	if _, err := cartService.Add(ctx, CartOwner{UserID: user.ID}, product.ID, 1); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}

	result, err := svc.Confirm(ctx, user, "")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if result.CartCleared {
		t.Fatalf("cart must not be cleared when handoff keeps it")
	}
	snap := cartService.Load(ctx, CartOwner{UserID: user.ID})
	if len(snap.Items) != 1 {
		t.Fatalf("cart must survive confirm, got %+v", snap.Items)
	}
}

func TestCheckoutServiceConfirmUnavailable(t *testing.T) {
	svc, cartService, db := setupCheckoutServiceTest(t, config.CheckoutConfig{WhatsAppNumber: "  "})
	ctx := context.Background()
	user := &models.User{ID: 603, Email: "off@example.com"}

	product := createCartTestProduct(t, db, "Unavailable Produto", 10)
	if _, err := cartService.Add(ctx, CartOwner{UserID: user.ID}, product.ID, 1); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}

	if _, err := svc.Confirm(ctx, user, ""); !errors.Is(err, ErrCheckoutUnavailable) {
		t.Fatalf("blank number want ErrCheckoutUnavailable got %v", err)
	}
}
