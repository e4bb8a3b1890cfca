package types

import (
	"context"
	"net/http"
	"time"
)

// Provider 支付提供商类型
type Provider string

const (
	ProviderWechat Provider = "wechat"
	ProviderAlipay Provider = "alipay"
)

// 回调通知的支付结果
const (
	NotifySuccess = "SUCCESS"
	NotifyFail    = "FAIL"
)

// Request 发起支付的请求参数
type Request struct {
	OrderNo     string   `json:"order_no"`
	Amount      int64    `json:"amount"` // 单位：分
	Provider    Provider `json:"provider"`
	ReturnURL   string   `json:"return_url"`
	Description string   `json:"description"`
}

// Result 发起支付的结果
type Result struct {
	OrderNo    string    `json:"order_no"`
	PaymentURL string    `json:"payment_url,omitempty"`
	PrepayID   string    `json:"prepay_id,omitempty"`
	ExpireAt   time.Time `json:"expire_at"`
}

// Notification 验签通过后的回调通知
//
// PlatformTradeNo 是第三方平台的交易号，同一笔成功支付的重复回调
// 携带相同的交易号，回调处理器以它做幂等判断。
type Notification struct {
	OrderNo         string // 商户订单号
	PayAmount       int64  // 回调金额，单位：分
	PayType         Provider
	PlatformTradeNo string // 平台交易号（幂等键）
	PayStatus       string // SUCCESS / FAIL
	PayTime         time.Time
	Attach          string
	Raw             string // 原始报文，入库留审计
}

// Gateway 支付网关接口
//
// VerifyNotify 负责验签：验签失败返回错误，调用方不得改动任何状态。
type Gateway interface {
	CreatePayment(ctx context.Context, req *Request) (*Result, error)
	VerifyNotify(req *http.Request) (*Notification, error)
}
