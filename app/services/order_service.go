// Package services 业务逻辑层
// services -> repositories -> 数据库
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"market/app/models/order"
	"market/app/repositories"
	"market/pkg/errs"
	"market/pkg/event"
	"market/pkg/logger"
)

// PayExpireDuration 下单后的支付有效期
const PayExpireDuration = 30 * time.Minute

// OrderService 订单状态机
type OrderService struct {
	orders    *repositories.OrderRepository
	publisher event.Publisher
}

// NewOrderService 创建订单服务
func NewOrderService(orders *repositories.OrderRepository, publisher event.Publisher) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
	}
}

// CreateOrderParams 下单参数
type CreateOrderParams struct {
	ProductID   uint64
	BuyerID     string
	SellerID    string
	TotalAmount int64 // 单位：分
	Quantity    int
}

// Create 创建订单，初始状态为待支付
func (s *OrderService) Create(ctx context.Context, params *CreateOrderParams) (*order.Order, error) {
	if params.TotalAmount <= 0 {
		return nil, errs.NewValidation("订单金额必须大于 0")
	}
	if params.Quantity <= 0 {
		return nil, errs.NewValidation("购买数量必须大于 0")
	}
	if params.BuyerID == params.SellerID {
		return nil, errs.NewValidation("不能购买自己发布的商品")
	}

	expireAt := time.Now().Add(PayExpireDuration)
	o := &order.Order{
		OrderNo:     order.GenerateOrderNo(),
		ProductID:   params.ProductID,
		BuyerID:     params.BuyerID,
		SellerID:    params.SellerID,
		TotalAmount: params.TotalAmount,
		Quantity:    params.Quantity,
		Status:      string(order.StatusPendingPayment),
		PayExpireAt: &expireAt,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errs.NewSystem("创建订单失败", err)
	}

	s.publish(ctx, o, event.OrderCreated)
	return o, nil
}

// Get 查询订单
func (s *OrderService) Get(ctx context.Context, orderID uint64) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("订单不存在")
		}
		return nil, errs.NewSystem("查询订单失败", err)
	}
	return o, nil
}

// Transition 申请一次状态迁移
//
// 幂等重试：订单已处于目标状态时直接返回成功，不再改状态、不再发事件。
// 非法迁移返回 state 错误，操作者无权限返回 permission 错误，
// 两种情况下订单均保持原状。
func (s *OrderService) Transition(ctx context.Context, orderID uint64, target order.Status, op order.Operator) (*order.Order, error) {
	if !order.IsValidStatus(target) {
		return nil, errs.NewValidation("未知的订单状态: " + string(target))
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("订单不存在")
		}
		return nil, errs.NewSystem("查询订单失败", err)
	}

	from := order.Status(o.Status)
	if from == target {
		return o, nil
	}

	legal, allowed := order.CanTransition(from, target, op)
	if !legal {
		return nil, errs.NewState(fmt.Sprintf("订单状态不允许从 %s 变更为 %s", from, target))
	}
	if !allowed {
		return nil, errs.NewPermission(fmt.Sprintf("%s 无权执行该操作", op))
	}

	rows, err := s.orders.UpdateStatus(ctx, o.ID, from, target, stampsFor(target))
	if err != nil {
		return nil, errs.NewSystem("更新订单状态失败", err)
	}
	if rows == 0 {
		// 条件更新落空说明状态已被并发请求改走，重读判断是否恰好到达目标态
		current, err := s.orders.GetByID(ctx, o.ID)
		if err != nil {
			return nil, errs.NewSystem("查询订单失败", err)
		}
		if order.Status(current.Status) == target {
			return current, nil
		}
		return nil, errs.NewState("订单状态已变更，请刷新后重试")
	}

	o, err = s.orders.GetByID(ctx, o.ID)
	if err != nil {
		return nil, errs.NewSystem("查询订单失败", err)
	}

	if eventType, ok := eventTypeFor(target); ok {
		s.publish(ctx, o, eventType)
	}
	return o, nil
}

// StartPayExpireScanner 启动支付超时扫描任务
// 超过 pay_expire_at 仍未支付的订单由系统角色自动取消。
func (s *OrderService) StartPayExpireScanner(ctx context.Context, interval time.Duration) {
	logger.InfoString("订单", "超时扫描", "支付超时扫描任务启动")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoString("订单", "超时扫描", "支付超时扫描任务停止")
			return
		case <-ticker.C:
			s.cancelExpiredOrders(ctx)
		}
	}
}

// cancelExpiredOrders 取消一批支付超时订单
func (s *OrderService) cancelExpiredOrders(ctx context.Context) {
	expired, err := s.orders.ListPayExpired(ctx, time.Now(), 100)
	if err != nil {
		logger.ErrorString("订单", "超时扫描", "查询超时订单失败: "+err.Error())
		return
	}

	for _, o := range expired {
		// Transition 自带幂等：已被支付回调推走的订单会落在 state 错误上，跳过即可
		if _, err := s.Transition(ctx, o.ID, order.StatusCancelled, order.OperatorSystem); err != nil {
			if errs.IsState(err) {
				continue
			}
			logger.ErrorString("订单", "超时扫描",
				fmt.Sprintf("取消超时订单 %s 失败: %v", o.OrderNo, err))
		}
	}
}

// publish 发布订单事件，失败只记日志
func (s *OrderService) publish(ctx context.Context, o *order.Order, eventType string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, event.NewOrderEvent(event.OrderEvent{
		OrderID:  o.ID,
		BuyerID:  o.BuyerID,
		SellerID: o.SellerID,
		OrderNo:  o.OrderNo,
		Type:     eventType,
	}))
}

// stampsFor 目标状态对应要一并更新的时间戳字段
func stampsFor(target order.Status) map[string]interface{} {
	now := time.Now()
	switch target {
	case order.StatusPendingShipment:
		return map[string]interface{}{"paid_at": now}
	case order.StatusShipped:
		return map[string]interface{}{"shipped_at": now}
	case order.StatusCompleted:
		return map[string]interface{}{"received_at": now}
	case order.StatusCancelled:
		return map[string]interface{}{"canceled_at": now}
	default:
		return nil
	}
}

// eventTypeFor 目标状态对应的事件类型，部分中间态不发事件
func eventTypeFor(target order.Status) (string, bool) {
	switch target {
	case order.StatusPendingShipment:
		return event.OrderPaid, true
	case order.StatusShipped:
		return event.OrderShipped, true
	case order.StatusPendingReceive:
		return event.OrderReceived, true
	case order.StatusCompleted:
		return event.OrderFinished, true
	case order.StatusCancelled:
		return event.OrderCanceled, true
	case order.StatusRefunded:
		return event.OrderRefunded, true
	default:
		return "", false
	}
}
