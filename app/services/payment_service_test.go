package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"market/app/models/order"
	"market/app/models/payment"
	"market/pkg/errs"
	"market/pkg/payment/types"
)

func newPaymentService(db *gorm.DB, pub *fakePublisher) *PaymentService {
	return NewPaymentService(orderRepo(db), paymentRepo(db), pub)
}

func successNotification(o *order.Order) *types.Notification {
	return &types.Notification{
		OrderNo:         o.OrderNo,
		PayAmount:       o.TotalAmount,
		PayType:         types.ProviderAlipay,
		PlatformTradeNo: "trade-" + o.OrderNo,
		PayStatus:       types.NotifySuccess,
		PayTime:         time.Now(),
		Raw:             `{"trade_status":"TRADE_SUCCESS"}`,
	}
}

func TestApplySuccessCallback(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := newPaymentService(db, pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)
	require.NoError(t, paymentRepo(db).Create(ctx, &payment.Payment{
		OrderID:   o.ID,
		OrderNo:   o.OrderNo,
		PayType:   "alipay",
		PayAmount: o.TotalAmount,
		PayStatus: string(payment.StatusPending),
	}))

	require.NoError(t, svc.Apply(ctx, successNotification(o)))

	// 支付记录标记成功并带上平台交易号
	record, err := paymentRepo(db).GetSuccessByOrderNo(ctx, o.OrderNo)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.IsSuccess())
	require.NotNil(t, record.PlatformTradeNo)
	assert.Equal(t, "trade-"+o.OrderNo, *record.PlatformTradeNo)
	assert.NotNil(t, record.PayTime)
	assert.NotEmpty(t, record.CallbackContent)

	// 订单推进到待发货
	got, err := orderRepo(db).GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusPendingShipment), got.Status)
	assert.NotNil(t, got.PaidAt)

	assert.Equal(t, []string{"order.pay"}, pub.keys())
}

func TestApplySuccessWithoutPendingRecord(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakePublisher{})
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)

	require.NoError(t, svc.Apply(ctx, successNotification(o)))

	record, err := paymentRepo(db).GetSuccessByOrderNo(ctx, o.OrderNo)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, o.ID, record.OrderID)
}

func TestApplyDuplicateSuccessCallback(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := newPaymentService(db, pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)
	n := successNotification(o)

	require.NoError(t, svc.Apply(ctx, n))
	// 平台重发同一笔成功回调：确认但不再生效
	require.NoError(t, svc.Apply(ctx, n))
	require.NoError(t, svc.Apply(ctx, n))

	var count int64
	require.NoError(t, db.Model(&payment.Payment{}).
		Where("order_no = ? AND pay_status = ?", o.OrderNo, string(payment.StatusSuccess)).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, []string{"order.pay"}, pub.keys(), "支付事件只发一次")
}

func TestApplyDuplicateTradeNoConfirmedOnce(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := newPaymentService(db, pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)
	n := successNotification(o)
	require.NoError(t, svc.Apply(ctx, n))

	// 平台交易号是回调的第一道幂等闸门
	record, err := paymentRepo(db).GetByPlatformTradeNo(ctx, n.PlatformTradeNo)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, o.ID, record.OrderID)

	// 同一交易号重发，金额即使被改动也不再入账
	replay := successNotification(o)
	replay.PayAmount = o.TotalAmount + 100
	require.NoError(t, svc.Apply(ctx, replay))

	var count int64
	require.NoError(t, db.Model(&payment.Payment{}).
		Where("platform_trade_no = ?", n.PlatformTradeNo).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []string{"order.pay"}, pub.keys())
}

func TestApplyAmountMismatch(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := newPaymentService(db, pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)
	n := successNotification(o)
	n.PayAmount = o.TotalAmount - 1

	err := svc.Apply(ctx, n)
	assert.True(t, errs.IsState(err))

	// 订单保持待支付，没有成功的支付记录
	got, _ := orderRepo(db).GetByID(ctx, o.ID)
	assert.Equal(t, string(order.StatusPendingPayment), got.Status)

	record, _ := paymentRepo(db).GetSuccessByOrderNo(ctx, o.OrderNo)
	assert.Nil(t, record)
	assert.Empty(t, pub.events)
}

func TestApplyFailCallback(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := newPaymentService(db, pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)
	require.NoError(t, paymentRepo(db).Create(ctx, &payment.Payment{
		OrderID:   o.ID,
		OrderNo:   o.OrderNo,
		PayAmount: o.TotalAmount,
		PayStatus: string(payment.StatusPending),
	}))

	pending, err := paymentRepo(db).GetPendingByOrderNo(ctx, o.OrderNo)
	require.NoError(t, err)
	require.True(t, pending.IsPending())

	n := successNotification(o)
	n.PayStatus = types.NotifyFail

	require.NoError(t, svc.Apply(ctx, n))

	// 支付记录标记失败，订单仍可重新发起支付
	pending, _ = paymentRepo(db).GetPendingByOrderNo(ctx, o.OrderNo)
	assert.Nil(t, pending)

	got, _ := orderRepo(db).GetByID(ctx, o.ID)
	assert.Equal(t, string(order.StatusPendingPayment), got.Status)
	assert.Empty(t, pub.events)
}

func TestApplyFailAfterSuccess(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := newPaymentService(db, pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)
	require.NoError(t, svc.Apply(ctx, successNotification(o)))

	// 乱序到达的失败回调：确认但不回滚
	n := successNotification(o)
	n.PayStatus = types.NotifyFail
	require.NoError(t, svc.Apply(ctx, n))

	got, _ := orderRepo(db).GetByID(ctx, o.ID)
	assert.Equal(t, string(order.StatusPendingShipment), got.Status)
	assert.Equal(t, []string{"order.pay"}, pub.keys())
}

func TestApplyFailThenSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakePublisher{})
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)
	require.NoError(t, paymentRepo(db).Create(ctx, &payment.Payment{
		OrderID:   o.ID,
		OrderNo:   o.OrderNo,
		PayAmount: o.TotalAmount,
		PayStatus: string(payment.StatusPending),
	}))

	fail := successNotification(o)
	fail.PayStatus = types.NotifyFail
	require.NoError(t, svc.Apply(ctx, fail))

	// 用户重试支付成功
	require.NoError(t, svc.Apply(ctx, successNotification(o)))

	got, _ := orderRepo(db).GetByID(ctx, o.ID)
	assert.Equal(t, string(order.StatusPendingShipment), got.Status)
}

func TestApplyOrderNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakePublisher{})

	n := &types.Notification{
		OrderNo:   "no-such-order",
		PayAmount: 100,
		PayStatus: types.NotifySuccess,
	}
	err := svc.Apply(context.Background(), n)
	assert.True(t, errs.IsNotFound(err))
}

func TestApplySuccessOnNonPayableOrder(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := newPaymentService(db, pub)
	ctx := context.Background()

	// 订单已被取消，成功回调只落支付记录，状态不动、不发事件
	o := seedOrder(t, db, order.StatusCancelled)

	require.NoError(t, svc.Apply(ctx, successNotification(o)))

	got, _ := orderRepo(db).GetByID(ctx, o.ID)
	assert.Equal(t, string(order.StatusCancelled), got.Status)
	assert.Empty(t, pub.events)

	record, _ := paymentRepo(db).GetSuccessByOrderNo(ctx, o.OrderNo)
	assert.NotNil(t, record)
}
