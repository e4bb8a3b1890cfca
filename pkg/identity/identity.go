// Package identity 用户身份服务的外部端口
//
// 只承担存在性、归属和角色校验；查无此人一律视为 not-found。
package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// User 身份服务返回的用户信息
type User struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Status   string `json:"status"`
}

// Service 身份端口
type Service interface {
	// GetUserByID 查询用户，不存在时返回 (nil, nil)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	// VerifyRole 校验用户是否具有指定角色
	VerifyRole(ctx context.Context, userID, role string) (bool, error)
}

// Config 身份服务配置
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client 身份服务 HTTP 客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建身份服务客户端
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

// GetUserByID 查询用户
func (c *Client) GetUserByID(ctx context.Context, userID string) (*User, error) {
	var user User

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/v1/users/" + userID)
	if err != nil {
		return nil, fmt.Errorf("identity service request error: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity service status %d", resp.StatusCode())
	}
	return &user, nil
}

type verifyRoleResponse struct {
	Allowed bool `json:"allowed"`
}

// VerifyRole 校验角色
func (c *Client) VerifyRole(ctx context.Context, userID, role string) (bool, error) {
	var result verifyRoleResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("role", role).
		SetResult(&result).
		Get("/v1/users/" + userID + "/roles/verify")
	if err != nil {
		return false, fmt.Errorf("identity service request error: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("identity service status %d", resp.StatusCode())
	}
	return result.Allowed, nil
}
