package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/stg-catalog/internal/config"
	"github.com/stg-catalog/internal/logger"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/queue"
)

const (
	fallbackCustomerName  = "Cliente não informado"
	fallbackCustomerEmail = "Email não informado"
)

// CheckoutResult 下单转发结果
type CheckoutResult struct {
	Message     string       `json:"message"`      // 订单消息原文
	WhatsAppURL string       `json:"whatsapp_url"` // 客户端打开的 wa.me 深链
	ItemCount   int          `json:"item_count"`   // 商品总数
	Total       models.Money `json:"total"`        // 订单总额
	CartCleared bool         `json:"cart_cleared"` // 是否已清空购物车
}

// CheckoutService 下单转发服务：将购物车汇总为 WhatsApp 订单消息
type CheckoutService struct {
	cartService *CartService
	queueClient *queue.Client
	cfg         config.CheckoutConfig
}

// NewCheckoutService 创建下单转发服务
func NewCheckoutService(cartService *CartService, queueClient *queue.Client, cfg config.CheckoutConfig) *CheckoutService {
	return &CheckoutService{
		cartService: cartService,
		queueClient: queueClient,
		cfg:         cfg,
	}
}

// BuildOrderMessage 生成订单消息文本
func (s *CheckoutService) BuildOrderMessage(name, email string, lines []models.CartLine, total models.Money) string {
	storeName := strings.TrimSpace(s.cfg.StoreName)
	if storeName == "" {
		storeName = "STG CATALOG"
	}
	if strings.TrimSpace(name) == "" {
		name = fallbackCustomerName
	}
	if strings.TrimSpace(email) == "" {
		email = fallbackCustomerEmail
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*NOVO PEDIDO - %s*\n\n", storeName)
	fmt.Fprintf(&b, "*Cliente:* %s\n", name)
	fmt.Fprintf(&b, "*Email:* %s\n\n", email)
	b.WriteString("*PRODUTOS:*\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "- %s - Qtd: %d - %s\n", line.Product.Name, line.Quantity, FormatBRL(line.Product.Price))
	}
	fmt.Fprintf(&b, "\n*TOTAL: %s*\n\n", FormatBRL(total))
	b.WriteString("---\n")
	b.WriteString("Pedido realizado via STG Catalog Link wa.me automático")
	return b.String()
}

// BuildWhatsAppURL 生成 wa.me 深链，空格按 %20 编码
func (s *CheckoutService) BuildWhatsAppURL(message string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", strings.TrimSpace(s.cfg.WhatsAppNumber), encoded)
}

// Confirm 确认下单：汇总购物车、生成深链、推送审计任务，并按配置清空购物车
func (s *CheckoutService) Confirm(ctx context.Context, user *models.User, deviceID string) (*CheckoutResult, error) {
	if user == nil || user.ID == 0 {
		return nil, ErrInvalidCredentials
	}
	if strings.TrimSpace(s.cfg.WhatsAppNumber) == "" {
		return nil, ErrCheckoutUnavailable
	}

	owner := CartOwner{UserID: user.ID}
	snapshot := s.cartService.Load(ctx, owner)
	if snapshot.LoadError {
		return nil, ErrCartLoadFailed
	}
	if len(snapshot.Items) == 0 {
		return nil, ErrCartEmpty
	}

	message := s.BuildOrderMessage(user.DisplayName, user.Email, snapshot.Items, snapshot.Total)
	result := &CheckoutResult{
		Message:     message,
		WhatsAppURL: s.BuildWhatsAppURL(message),
		ItemCount:   snapshot.ItemCount,
		Total:       snapshot.Total,
	}

	if err := s.queueClient.EnqueueCheckoutDispatched(queue.CheckoutDispatchedPayload{
		UserID:        user.ID,
		DeviceID:      deviceID,
		CustomerName:  user.DisplayName,
		CustomerEmail: user.Email,
		ItemCount:     snapshot.ItemCount,
		TotalAmount:   snapshot.Total.String(),
		Message:       message,
	}); err != nil {
		logger.Warnw("checkout_audit_enqueue_failed", "user_id", user.ID, "error", err)
	}

	if s.cfg.ClearOnHandoff {
		if err := s.cartService.Clear(ctx, owner); err != nil {
			logger.Warnw("checkout_cart_clear_failed", "user_id", user.ID, "error", err)
		} else {
			result.CartCleared = true
		}
	}

	logger.Infow("checkout_dispatched",
		"user_id", user.ID,
		"item_count", snapshot.ItemCount,
		"total", snapshot.Total.String(),
		"cart_cleared", result.CartCleared,
	)
	return result, nil
}
