package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RelayClient 通过 HTTP 中继发送短信与邮件
//
// POST {base}/sms   {"to": "...", "message": "..."}
// POST {base}/email {"to": "...", "subject": "...", "body": "..."}
type RelayClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewRelayClient 创建中继客户端
func NewRelayClient(baseURL, token string, timeout time.Duration) *RelayClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RelayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type smsPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendCode 下发短信验证码
func (c *RelayClient) SendCode(ctx context.Context, phone, code string) error {
	return c.post(ctx, "/sms", smsPayload{
		To:      phone,
		Message: fmt.Sprintf("Your verification code is %s", code),
	})
}

// SendEmail 发送邮件
func (c *RelayClient) SendEmail(ctx context.Context, msg Email) error {
	return c.post(ctx, "/email", msg)
}

func (c *RelayClient) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

var _ Sender = (*RelayClient)(nil)
