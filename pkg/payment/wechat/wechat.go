package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"

	"market/config"
	"market/pkg/payment/types"
)

// WechatGateway 微信支付网关
type WechatGateway struct {
	client        *core.Client
	notifyHandler *notify.Handler
	appID         string
	mchID         string
	notifyURL     string
}

// NewWechatGateway 创建微信支付网关
func NewWechatGateway(config config.WechatConfig) (*WechatGateway, error) {
	// 1. 加载商户私钥
	mchPrivateKey, err := utils.LoadPrivateKey(config.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load merchant private key error: %w", err)
	}

	// 2. 创建客户端（自动注册平台证书下载器）
	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(
			config.MchID,
			config.SerialNo,
			mchPrivateKey,
			config.APIv3Key,
		),
	}
	client, err := core.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create wechat pay client error: %w", err)
	}

	// 3. 回调验签处理器
	certVisitor := downloader.MgrInstance().GetCertificateVisitor(config.MchID)
	handler := notify.NewNotifyHandler(config.APIv3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))

	return &WechatGateway{
		client:        client,
		notifyHandler: handler,
		appID:         config.AppID,
		mchID:         config.MchID,
		notifyURL:     config.NotifyURL,
	}, nil
}

// CreatePayment 创建 Native 支付（二维码）
func (g *WechatGateway) CreatePayment(ctx context.Context, req *types.Request) (*types.Result, error) {
	expireAt := time.Now().Add(30 * time.Minute)

	svc := native.NativeApiService{Client: g.client}
	resp, _, err := svc.Prepay(ctx, native.PrepayRequest{
		Appid:       core.String(g.appID),
		Mchid:       core.String(g.mchID),
		Description: core.String(req.Description),
		OutTradeNo:  core.String(req.OrderNo),
		NotifyUrl:   core.String(g.notifyURL),
		TimeExpire:  core.Time(expireAt),
		Amount: &native.Amount{
			Total:    core.Int64(req.Amount),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create wechat payment error: %w", err)
	}

	return &types.Result{
		OrderNo:    req.OrderNo,
		PaymentURL: *resp.CodeUrl,
		ExpireAt:   expireAt,
	}, nil
}

// VerifyNotify 验签并解析支付结果通知
func (g *WechatGateway) VerifyNotify(req *http.Request) (*types.Notification, error) {
	transaction := new(payments.Transaction)
	notifyReq, err := g.notifyHandler.ParseNotifyRequest(req.Context(), req, transaction)
	if err != nil {
		return nil, fmt.Errorf("verify wechat notification error: %w", err)
	}

	payStatus := types.NotifyFail
	if transaction.TradeState != nil && *transaction.TradeState == "SUCCESS" {
		payStatus = types.NotifySuccess
	}

	var amount int64
	if transaction.Amount != nil && transaction.Amount.Total != nil {
		amount = *transaction.Amount.Total
	}

	var payTime time.Time
	if transaction.SuccessTime != nil {
		payTime, _ = time.Parse(time.RFC3339, *transaction.SuccessTime)
	}

	raw, _ := json.Marshal(notifyReq)

	noti := &types.Notification{
		PayAmount: amount,
		PayType:   types.ProviderWechat,
		PayStatus: payStatus,
		PayTime:   payTime,
		Raw:       string(raw),
	}
	if transaction.OutTradeNo != nil {
		noti.OrderNo = *transaction.OutTradeNo
	}
	if transaction.TransactionId != nil {
		noti.PlatformTradeNo = *transaction.TransactionId
	}
	if transaction.Attach != nil {
		noti.Attach = *transaction.Attach
	}
	return noti, nil
}
