// Package listeners 领域事件订阅方
package listeners

import (
	"context"
	"fmt"

	"market/pkg/event"
	"market/pkg/notify"
)

// OrderListener 订阅订单事件，给相关方发站内通知
type OrderListener struct {
	sink notify.Sink
}

// NewOrderListener 创建订单事件订阅方
func NewOrderListener(sink notify.Sink) *OrderListener {
	return &OrderListener{sink: sink}
}

// Attach 以 "order.#" 模式挂到总线上
func (l *OrderListener) Attach(bus *event.Bus) {
	bus.Subscribe("order-notify", "order.#", l.Handle)
}

// Handle 处理一条订单事件
func (l *OrderListener) Handle(ctx context.Context, e *event.Event) error {
	if e.Order == nil {
		return nil
	}

	msg := l.messageFor(e.Order)
	if msg == nil {
		return nil
	}
	return l.sink.Send(ctx, msg)
}

// messageFor 订单事件对应的通知内容，部分事件不产生通知
func (l *OrderListener) messageFor(o *event.OrderEvent) *notify.Message {
	switch o.Type {
	case event.OrderPaid:
		return &notify.Message{
			ReceiverID: o.SellerID,
			Title:      "订单已支付",
			Content:    fmt.Sprintf("订单 %s 买家已完成支付，请尽快发货", o.OrderNo),
			Type:       notify.TypeOrder,
			BusinessID: o.OrderNo,
		}
	case event.OrderShipped:
		return &notify.Message{
			ReceiverID: o.BuyerID,
			Title:      "卖家已发货",
			Content:    fmt.Sprintf("订单 %s 卖家已发货，请注意查收", o.OrderNo),
			Type:       notify.TypeOrder,
			BusinessID: o.OrderNo,
		}
	case event.OrderFinished:
		return &notify.Message{
			ReceiverID: o.SellerID,
			Title:      "交易完成",
			Content:    fmt.Sprintf("订单 %s 买家已确认收货，交易完成", o.OrderNo),
			Type:       notify.TypeOrder,
			BusinessID: o.OrderNo,
		}
	case event.OrderCanceled:
		return &notify.Message{
			ReceiverID: o.BuyerID,
			Title:      "订单已取消",
			Content:    fmt.Sprintf("订单 %s 已取消", o.OrderNo),
			Type:       notify.TypeOrder,
			BusinessID: o.OrderNo,
		}
	case event.OrderRefunded:
		return &notify.Message{
			ReceiverID: o.BuyerID,
			Title:      "退款完成",
			Content:    fmt.Sprintf("订单 %s 退款已完成", o.OrderNo),
			Type:       notify.TypeOrder,
			BusinessID: o.OrderNo,
		}
	default:
		return nil
	}
}
