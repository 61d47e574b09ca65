package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stg-catalog/internal/logger"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/provider"
	"github.com/stg-catalog/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCheckoutDispatched, c.handleCheckoutDispatched)
}

func (c *Consumer) handleCheckoutDispatched(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_checkout_dispatched_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CheckoutDispatchedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_checkout_dispatched_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_checkout_dispatched_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	total, err := models.NewMoneyFromString(strings.TrimSpace(payload.TotalAmount))
	if err != nil {
		logger.Warnw("worker_checkout_dispatched_total_invalid",
			"user_id", payload.UserID,
			"total_amount", payload.TotalAmount,
			"error", err,
		)
		total = models.Zero()
	}
	record := &models.CheckoutLog{
		UserID:        payload.UserID,
		DeviceID:      payload.DeviceID,
		CustomerName:  payload.CustomerName,
		CustomerEmail: payload.CustomerEmail,
		ItemCount:     payload.ItemCount,
		TotalAmount:   total,
		Message:       payload.Message,
	}
	if err := c.CheckoutLogRepo.Create(record); err != nil {
		logger.Warnw("worker_checkout_dispatched_persist_failed",
			"user_id", payload.UserID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_checkout_dispatched_persisted",
		"user_id", payload.UserID,
		"item_count", payload.ItemCount,
		"total_amount", total.String(),
	)
	return nil
}
