package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market/app/models/order"
	"market/pkg/errs"
)

func TestOrderCreate(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := NewOrderService(orderRepo(db), pub)

	o, err := svc.Create(context.Background(), &CreateOrderParams{
		ProductID:   1,
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		TotalAmount: 5000,
		Quantity:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, string(order.StatusPendingPayment), o.Status)
	assert.NotEmpty(t, o.OrderNo)
	require.NotNil(t, o.PayExpireAt)
	assert.WithinDuration(t, time.Now().Add(PayExpireDuration), *o.PayExpireAt, 5*time.Second)

	assert.Equal(t, []string{"order.create"}, pub.keys())
}

func TestOrderCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(orderRepo(db), &fakePublisher{})

	cases := []struct {
		name   string
		params CreateOrderParams
	}{
		{"金额为零", CreateOrderParams{BuyerID: "b", SellerID: "s", TotalAmount: 0, Quantity: 1}},
		{"金额为负", CreateOrderParams{BuyerID: "b", SellerID: "s", TotalAmount: -100, Quantity: 1}},
		{"数量为零", CreateOrderParams{BuyerID: "b", SellerID: "s", TotalAmount: 100, Quantity: 0}},
		{"自买自卖", CreateOrderParams{BuyerID: "u", SellerID: "u", TotalAmount: 100, Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tc.params)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestTransitionHappyPath(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := NewOrderService(orderRepo(db), pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)

	o, err := svc.Transition(ctx, o.ID, order.StatusPendingShipment, order.OperatorGateway)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusPendingShipment), o.Status)
	assert.NotNil(t, o.PaidAt)

	o, err = svc.Transition(ctx, o.ID, order.StatusShipped, order.OperatorSeller)
	require.NoError(t, err)
	assert.NotNil(t, o.ShippedAt)

	o, err = svc.Transition(ctx, o.ID, order.StatusPendingReceive, order.OperatorBuyer)
	require.NoError(t, err)

	o, err = svc.Transition(ctx, o.ID, order.StatusCompleted, order.OperatorBuyer)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusCompleted), o.Status)
	assert.NotNil(t, o.ReceivedAt)

	assert.Equal(t, []string{"order.pay", "order.ship", "order.receive", "order.finish"}, pub.keys())
}

func TestTransitionIdempotentRetry(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := NewOrderService(orderRepo(db), pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingShipment)

	_, err := svc.Transition(ctx, o.ID, order.StatusShipped, order.OperatorSeller)
	require.NoError(t, err)
	require.Len(t, pub.events, 1)

	// 重复请求同一迁移：成功返回，但不重复发事件
	got, err := svc.Transition(ctx, o.ID, order.StatusShipped, order.OperatorSeller)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusShipped), got.Status)
	assert.Len(t, pub.events, 1)
}

func TestTransitionIllegalEdge(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(orderRepo(db), &fakePublisher{})
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingPayment)

	_, err := svc.Transition(ctx, o.ID, order.StatusCompleted, order.OperatorBuyer)
	assert.True(t, errs.IsState(err))

	// 失败后订单保持原状
	got, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusPendingPayment), got.Status)
}

func TestTransitionPermissionDenied(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(orderRepo(db), &fakePublisher{})
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusPendingShipment)

	_, err := svc.Transition(ctx, o.ID, order.StatusShipped, order.OperatorBuyer)
	assert.True(t, errs.IsPermission(err))

	got, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusPendingShipment), got.Status)
}

func TestTransitionUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(orderRepo(db), &fakePublisher{})

	o := seedOrder(t, db, order.StatusPendingPayment)

	_, err := svc.Transition(context.Background(), o.ID, order.Status("paid"), order.OperatorGateway)
	assert.True(t, errs.IsValidation(err))
}

func TestTransitionOrderNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(orderRepo(db), &fakePublisher{})

	_, err := svc.Transition(context.Background(), 999999, order.StatusCancelled, order.OperatorBuyer)
	assert.True(t, errs.IsNotFound(err))
}

func TestTransitionDisputeEdge(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := NewOrderService(orderRepo(db), pub)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusShipped)

	got, err := svc.Transition(ctx, o.ID, order.StatusRefunding, order.OperatorBuyer)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusRefunding), got.Status)

	got, err = svc.Transition(ctx, o.ID, order.StatusRefunded, order.OperatorSeller)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusRefunded), got.Status)

	assert.Contains(t, pub.keys(), "order.refund")
}

func TestCancelExpiredOrders(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	svc := NewOrderService(orderRepo(db), pub)
	ctx := context.Background()

	expired := seedOrder(t, db, order.StatusPendingPayment)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(expired).Update("pay_expire_at", past).Error)

	alive := seedOrder(t, db, order.StatusPendingPayment)
	paid := seedOrder(t, db, order.StatusPendingShipment)

	svc.cancelExpiredOrders(ctx)

	got, _ := svc.Get(ctx, expired.ID)
	assert.Equal(t, string(order.StatusCancelled), got.Status)
	assert.NotNil(t, got.CanceledAt)

	got, _ = svc.Get(ctx, alive.ID)
	assert.Equal(t, string(order.StatusPendingPayment), got.Status)

	got, _ = svc.Get(ctx, paid.ID)
	assert.Equal(t, string(order.StatusPendingShipment), got.Status)

	assert.Equal(t, []string{"order.cancel"}, pub.keys())
}
