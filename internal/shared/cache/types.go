package cache

import "time"

// ============================================================================
// Key 前缀和 TTL 常量
// ============================================================================

const (
	// Key 前缀
	KeyPhoneCode  = "phone_code:"
	KeyEmailToken = "email_token:"

	// PhoneCodeGrace 验证码过期后继续保留的时间
	// 让确认请求能区分 "已过期" 与 "从未申请"
	PhoneCodeGrace = 10 * time.Minute
)
