package phone

import (
	"strings"

	"hiring-portal/internal/shared/apperr"
)

// Normalize 将用户输入的号码规范化为带国家码的纯数字形式
//
//	"0812-345-6789"     → "628123456789"
//	"+62 812 345 6789"  → "628123456789"
//	"0062 812 345 6789" → "628123456789"
func Normalize(raw, countryCode string) (string, error) {
	s := strings.TrimSpace(raw)
	international := strings.HasPrefix(s, "+")
	s = strings.TrimPrefix(s, "+")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", apperr.Validation("phone number contains invalid character %q", r)
		}
	}
	digits := b.String()

	switch {
	case international:
	case strings.HasPrefix(digits, "00"):
		digits = digits[2:]
	case strings.HasPrefix(digits, "0"):
		digits = countryCode + digits[1:]
	case !strings.HasPrefix(digits, countryCode):
		digits = countryCode + digits
	}

	// E.164 最长 15 位
	if len(digits) < 8 || len(digits) > 15 {
		return "", apperr.Validation("phone number %q is not a valid length", raw)
	}
	return digits, nil
}
