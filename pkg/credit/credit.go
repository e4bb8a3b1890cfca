// Package credit 信用分账本的外部端口
//
// 信用分由独立的信用服务维护，这里只是一个窄接口。
// 调用失败不回滚评价主写，由任务队列负责重试，重试耗尽后放弃。
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"market/pkg/logger"
)

// Ledger 信用分端口
type Ledger interface {
	// UpdateCreditScore 调整用户信用分，返回对端是否受理
	UpdateCreditScore(ctx context.Context, userID string, delta int, reason string) (bool, error)
}

// Config 信用服务配置
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client 信用服务 HTTP 客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建信用服务客户端
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetRetryCount(0), // 重试交给任务队列，避免双重重试
	}
}

type updateScoreRequest struct {
	UserID string `json:"user_id"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

type updateScoreResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpdateCreditScore 调用信用服务调整信用分
func (c *Client) UpdateCreditScore(ctx context.Context, userID string, delta int, reason string) (bool, error) {
	var result updateScoreResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(updateScoreRequest{UserID: userID, Delta: delta, Reason: reason}).
		SetResult(&result).
		Post("/v1/credit/score")
	if err != nil {
		return false, fmt.Errorf("credit service request error: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("credit service status %d", resp.StatusCode())
	}

	if !result.Success {
		logger.WarnString("Credit", "UpdateCreditScore",
			fmt.Sprintf("信用服务拒绝调整 user=%s delta=%d: %s", userID, delta, result.Message))
	}
	return result.Success, nil
}
