package notify

import (
	"context"
	"sync"
)

// Recorder 记录所有发送请求的 Sender（测试用），Err 非 nil 时发送失败
type Recorder struct {
	mu     sync.Mutex
	Err    error
	Codes  []SentCode
	Emails []Email
}

// SentCode 已发送的验证码
type SentCode struct {
	Phone string
	Code  string
}

func (r *Recorder) SendCode(ctx context.Context, phone, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Codes = append(r.Codes, SentCode{Phone: phone, Code: code})
	return nil
}

func (r *Recorder) SendEmail(ctx context.Context, msg Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Emails = append(r.Emails, msg)
	return nil
}

// LastCode 最近一次发送的验证码
func (r *Recorder) LastCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Codes) == 0 {
		return ""
	}
	return r.Codes[len(r.Codes)-1].Code
}

var _ Sender = (*Recorder)(nil)
