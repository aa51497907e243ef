package util

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatPercent 格式化百分比，value 已是百分数（如 12.345 → "12.35%"）
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// FormatCurrency 格式化金额（千分位，两位小数）
func FormatCurrency(value float64) string {
	s := decimal.NewFromFloat(value).StringFixed(2)

	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var out []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	return sign + string(out) + frac
}
