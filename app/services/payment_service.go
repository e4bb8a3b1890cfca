package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"market/app/models/order"
	"market/app/models/payment"
	"market/app/repositories"
	"market/pkg/database"
	"market/pkg/errs"
	"market/pkg/event"
	"market/pkg/logger"
	"market/pkg/payment/types"
)

// PaymentService 支付单与回调处理
type PaymentService struct {
	orders    *repositories.OrderRepository
	payments  *repositories.PaymentRepository
	publisher event.Publisher
}

// NewPaymentService 创建支付服务
func NewPaymentService(orders *repositories.OrderRepository, payments *repositories.PaymentRepository, publisher event.Publisher) *PaymentService {
	return &PaymentService{
		orders:    orders,
		payments:  payments,
		publisher: publisher,
	}
}

// CreatePayment 为待支付订单发起支付
func (s *PaymentService) CreatePayment(ctx context.Context, gateway types.Gateway, orderNo string, provider types.Provider) (*types.Result, error) {
	o, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("订单不存在")
		}
		return nil, errs.NewSystem("查询订单失败", err)
	}
	if order.Status(o.Status) != order.StatusPendingPayment {
		return nil, errs.NewState("订单当前状态不可支付")
	}
	if o.PayExpired(time.Now()) {
		return nil, errs.NewState("订单已超过支付有效期")
	}

	result, err := gateway.CreatePayment(ctx, &types.Request{
		OrderNo:     o.OrderNo,
		Amount:      o.TotalAmount,
		Provider:    provider,
		Description: fmt.Sprintf("商品订单 %s", o.OrderNo),
	})
	if err != nil {
		return nil, errs.NewSystem("发起支付失败", err)
	}

	p := &payment.Payment{
		OrderID:   o.ID,
		OrderNo:   o.OrderNo,
		PayType:   string(provider),
		PayAmount: o.TotalAmount,
		PayStatus: string(payment.StatusPending),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, errs.NewSystem("创建支付记录失败", err)
	}
	return result, nil
}

// HandleCallback 处理支付回调
// 返回网关要求的应答串："success" 表示确认收到，"fail" 让平台继续重试。
func (s *PaymentService) HandleCallback(ctx context.Context, gateway types.Gateway, req *http.Request) string {
	notification, err := gateway.VerifyNotify(req)
	if err != nil {
		logger.ErrorString("支付", "回调", "验签失败: "+err.Error())
		return "fail"
	}

	if err := s.Apply(ctx, notification); err != nil {
		logger.ErrorString("支付", "回调",
			fmt.Sprintf("处理回调失败 order_no=%s trade_no=%s: %v",
				notification.OrderNo, notification.PlatformTradeNo, err))
		return "fail"
	}
	return "success"
}

// Apply 应用一条验签通过的回调通知
//
// 幂等规则：
//   - 同一平台交易号的成功回调只生效一次，重复回调直接确认；
//   - 成功之后再收到失败回调视为乱序，确认但不回滚；
//   - 金额与订单不符的成功回调拒绝入账。
func (s *PaymentService) Apply(ctx context.Context, n *types.Notification) error {
	o, err := s.orders.GetByOrderNo(ctx, n.OrderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewNotFound("回调订单不存在: " + n.OrderNo)
		}
		return errs.NewSystem("查询订单失败", err)
	}

	if n.PlatformTradeNo != "" {
		seen, err := s.payments.GetByPlatformTradeNo(ctx, n.PlatformTradeNo)
		if err != nil {
			return errs.NewSystem("查询支付记录失败", err)
		}
		if seen != nil {
			// 平台重发的同一笔交易，直接确认
			return nil
		}
	}

	existing, err := s.payments.GetSuccessByOrderNo(ctx, n.OrderNo)
	if err != nil {
		return errs.NewSystem("查询支付记录失败", err)
	}
	if existing != nil {
		// 订单已有成功支付，后到的任何回调都只确认
		return nil
	}

	if n.PayStatus != types.NotifySuccess {
		return s.applyFail(ctx, n)
	}

	if n.PayAmount != o.TotalAmount {
		return errs.NewState(fmt.Sprintf("回调金额 %d 与订单金额 %d 不符", n.PayAmount, o.TotalAmount))
	}

	var paid bool
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		payments := s.payments.WithDB(tx)
		orders := s.orders.WithDB(tx)

		now := time.Now()
		tradeNo := n.PlatformTradeNo
		record, err := payments.GetPendingByOrderNo(ctx, n.OrderNo)
		if err != nil {
			return err
		}
		if record == nil {
			record = &payment.Payment{
				OrderID: o.ID,
				OrderNo: o.OrderNo,
			}
		}
		record.PayType = string(n.PayType)
		record.PlatformTradeNo = &tradeNo
		record.PayAmount = n.PayAmount
		record.PayStatus = string(payment.StatusSuccess)
		record.PayTime = &n.PayTime
		record.CallbackTime = &now
		record.CallbackContent = n.Raw
		if err := payments.Save(ctx, record); err != nil {
			return err
		}

		rows, err := orders.UpdateStatus(ctx, o.ID,
			order.StatusPendingPayment, order.StatusPendingShipment,
			map[string]interface{}{"paid_at": now})
		if err != nil {
			return err
		}
		paid = rows > 0
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发的重复回调已抢先落库
			return nil
		}
		return errs.NewSystem("支付入账失败", err)
	}

	if paid {
		s.publishPaid(ctx, o)
	} else {
		logger.WarnString("支付", "回调",
			fmt.Sprintf("订单 %s 已不在待支付状态，支付记录已保存，状态未变更", o.OrderNo))
	}
	return nil
}

// applyFail 记录失败回调，订单保持待支付，等待重新发起
func (s *PaymentService) applyFail(ctx context.Context, n *types.Notification) error {
	record, err := s.payments.GetPendingByOrderNo(ctx, n.OrderNo)
	if err != nil {
		return errs.NewSystem("查询支付记录失败", err)
	}
	if record == nil {
		return nil
	}

	now := time.Now()
	record.PayStatus = string(payment.StatusFail)
	record.CallbackTime = &now
	record.CallbackContent = n.Raw
	if err := s.payments.Save(ctx, record); err != nil {
		return errs.NewSystem("保存支付记录失败", err)
	}
	return nil
}

func (s *PaymentService) publishPaid(ctx context.Context, o *order.Order) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, event.NewOrderEvent(event.OrderEvent{
		OrderID:  o.ID,
		BuyerID:  o.BuyerID,
		SellerID: o.SellerID,
		OrderNo:  o.OrderNo,
		Type:     event.OrderPaid,
	}))
}
