package service

import (
	"strings"

	"github.com/stg-catalog/internal/models"
)

// FormatBRL 按巴西雷亚尔习惯格式化金额：千分位用点，小数位用逗号
// 例如 1234.5 -> "R$ 1.234,50"
func FormatBRL(amount models.Money) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	intPart := fixed
	decPart := "00"
	if idx := strings.LastIndex(fixed, "."); idx >= 0 {
		intPart = fixed[:idx]
		decPart = fixed[idx+1:]
	}

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(".")
		}
		b.WriteRune(digit)
	}
	b.WriteString(",")
	b.WriteString(decPart)
	return b.String()
}
