package queue

import (
	"encoding/json"

	"github.com/stg-catalog/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCheckoutDispatched 下单转发审计任务
	TaskCheckoutDispatched = constants.TaskCheckoutDispatched
)

// CheckoutDispatchedPayload 下单转发审计任务载荷
type CheckoutDispatchedPayload struct {
	UserID        uint   `json:"user_id"`
	DeviceID      string `json:"device_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	ItemCount     int    `json:"item_count"`
	TotalAmount   string `json:"total_amount"`
	Message       string `json:"message"`
}

// NewCheckoutDispatchedTask 创建下单转发审计任务
func NewCheckoutDispatchedTask(payload CheckoutDispatchedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutDispatched, body), nil
}
