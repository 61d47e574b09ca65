package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money 金额类型，基于 decimal 实现精确计算，序列化为两位小数字符串
type Money struct {
	decimal.Decimal
}

// NewMoney 从 decimal 创建金额
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// NewMoneyFromFloat 从 float64 创建金额
func NewMoneyFromFloat(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f)}
}

// NewMoneyFromString 从字符串创建金额
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

// Zero 金额零值
func Zero() Money {
	return Money{Decimal: decimal.Zero}
}

// Add 金额相加
func (m Money) Add(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

// Sub 金额相减
func (m Money) Sub(other Money) Money {
	return Money{Decimal: m.Decimal.Sub(other.Decimal)}
}

// MulInt 金额乘以整数（数量）
func (m Money) MulInt(n int64) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(n))}
}

// IsZero 是否为零
func (m Money) IsZero() bool {
	return m.Decimal.IsZero()
}

// IsNegative 是否为负数
func (m Money) IsNegative() bool {
	return m.Decimal.IsNegative()
}

// Cmp 比较两个金额，-1 小于，0 等于，1 大于
func (m Money) Cmp(other Money) int {
	return m.Decimal.Cmp(other.Decimal)
}

// String 返回两位小数的字符串表示
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Float64 返回 float64 表示（仅用于展示，勿用于计算）
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// MarshalJSON 序列化为两位小数字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 反序列化，接受字符串或数字
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("invalid money string %q: %w", s, err)
		}
		m.Decimal = d
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("invalid money value: %w", err)
	}
	m.Decimal = d
	return nil
}

// Value 实现 driver.Valuer，存储为两位小数字符串
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan 实现 sql.Scanner
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	switch v := value.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("scan money from string %q: %w", v, err)
		}
		m.Decimal = d
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("scan money from bytes %q: %w", v, err)
		}
		m.Decimal = d
	case float64:
		m.Decimal = decimal.NewFromFloat(v)
	case int64:
		m.Decimal = decimal.NewFromInt(v)
	default:
		return fmt.Errorf("unsupported money scan type %T", value)
	}
	return nil
}
