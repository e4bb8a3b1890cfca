package alipay

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/smartwalle/alipay/v3"

	"market/config"
	"market/pkg/payment/types"
)

// AlipayGateway 支付宝支付网关
type AlipayGateway struct {
	client    *alipay.Client
	appID     string
	notifyURL string
	returnURL string
}

// NewAlipayGateway 创建支付宝支付网关
func NewAlipayGateway(config config.AlipayConfig) (*AlipayGateway, error) {
	client, err := alipay.New(config.AppID, config.PrivateKey, config.IsProduction)
	if err != nil {
		return nil, fmt.Errorf("create alipay client error: %w", err)
	}

	if err := client.LoadAliPayPublicKey(config.PublicKey); err != nil {
		return nil, fmt.Errorf("load alipay public key error: %w", err)
	}

	return &AlipayGateway{
		client:    client,
		appID:     config.AppID,
		notifyURL: config.NotifyURL,
		returnURL: config.ReturnURL,
	}, nil
}

// CreatePayment 创建支付
func (g *AlipayGateway) CreatePayment(ctx context.Context, req *types.Request) (*types.Result, error) {
	expireAt := time.Now().Add(30 * time.Minute)

	trade := alipay.TradePagePay{}
	trade.NotifyURL = g.notifyURL
	trade.ReturnURL = req.ReturnURL
	if trade.ReturnURL == "" {
		trade.ReturnURL = g.returnURL
	}
	trade.Subject = req.Description
	trade.OutTradeNo = req.OrderNo
	trade.TotalAmount = fmt.Sprintf("%.2f", float64(req.Amount)/100)
	trade.ProductCode = "FAST_INSTANT_TRADE_PAY"

	url, err := g.client.TradePagePay(trade)
	if err != nil {
		return nil, fmt.Errorf("create alipay payment error: %w", err)
	}

	return &types.Result{
		OrderNo:    req.OrderNo,
		PaymentURL: url.String(),
		ExpireAt:   expireAt,
	}, nil
}

// VerifyNotify 验签并解析异步通知
// 验签失败即返回错误，报文按不可信处理。
func (g *AlipayGateway) VerifyNotify(req *http.Request) (*types.Notification, error) {
	noti, err := g.client.GetTradeNotification(req)
	if err != nil {
		return nil, fmt.Errorf("verify alipay notification error: %w", err)
	}

	payStatus := types.NotifyFail
	if noti.TradeStatus == alipay.TradeStatusSuccess || noti.TradeStatus == alipay.TradeStatusFinished {
		payStatus = types.NotifySuccess
	}

	amount, err := yuanToCents(noti.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("parse alipay amount error: %w", err)
	}

	payTime, _ := time.ParseInLocation("2006-01-02 15:04:05", noti.GmtPayment, time.Local)

	raw, _ := json.Marshal(noti)

	return &types.Notification{
		OrderNo:         noti.OutTradeNo,
		PayAmount:       amount,
		PayType:         types.ProviderAlipay,
		PlatformTradeNo: noti.TradeNo,
		PayStatus:       payStatus,
		PayTime:         payTime,
		Attach:          noti.PassbackParams,
		Raw:             string(raw),
	}, nil
}

// yuanToCents 金额字符串（元）转为分
func yuanToCents(amount string) (int64, error) {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(value * 100)), nil
}
