// Package notify 短信/邮件发送
//
// 生产环境通过 HTTP 中继服务投递；未配置中继时使用 LogSender 仅打印日志。
package notify

import (
	"context"
	"log"
)

// Email 邮件内容
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender 通知发送接口
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
	SendEmail(ctx context.Context, msg Email) error
}

// LogSender 只写日志的发送器（开发环境）
type LogSender struct{}

func (LogSender) SendCode(ctx context.Context, phone, code string) error {
	log.Printf("[notify] SMS to %s: code=%s", phone, code)
	return nil
}

func (LogSender) SendEmail(ctx context.Context, msg Email) error {
	log.Printf("[notify] Email to %s: %s\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}

var _ Sender = LogSender{}
