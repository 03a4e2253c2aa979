package model

import "time"

// PhoneCode 已下发的手机验证码（每个用户同一时间只有一个有效码）
type PhoneCode struct {
	UserID    string    `json:"user_id"`
	Phone     string    `json:"phone"`     // 规范化后的号码
	CodeHash  string    `json:"code_hash"` // 不保存明文
	Attempts  int       `json:"attempts"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired 在 now 时刻是否已过期
func (c *PhoneCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// EmailToken 邮箱验证令牌（只保存哈希，单次使用）
type EmailToken struct {
	TokenHash string    `json:"token_hash"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
