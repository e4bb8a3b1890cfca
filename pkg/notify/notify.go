// Package notify 站内通知服务的外部端口
//
// 投递机制和重试策略由通知服务自己负责，这边发出即返回。
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// 通知类型
const (
	TypeOrder     = "order"     // 订单动态
	TypeCommunity = "community" // 社区互动
	TypeSystem    = "system"    // 系统消息
)

// Message 一条用户通知
type Message struct {
	ReceiverID string `json:"receiver_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	BusinessID string `json:"business_id"` // 关联的业务对象 id（订单号、帖子 id）
}

// Sink 通知端口
type Sink interface {
	Send(ctx context.Context, msg *Message) error
}

// Config 通知服务配置
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client 通知服务 HTTP 客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建通知服务客户端
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
	}
}

// Send 投递一条通知
func (c *Client) Send(ctx context.Context, msg *Message) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/v1/notifications")
	if err != nil {
		return fmt.Errorf("notify service request error: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notify service status %d", resp.StatusCode())
	}
	return nil
}
