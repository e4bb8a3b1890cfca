// Package event 领域事件总线
//
// 事件通过路由键（如 "order.pay"、"community.like"）投递给订阅方，
// 传输层为 Redis 列表，按顶级主题各一个列表。投递语义为至少一次、
// 不保证顺序；每个事件携带稳定的事件 ID，订阅方消费前先做去重。
package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// 订单事件类型
const (
	OrderCreated  = "create"  // 下单
	OrderPaid     = "pay"     // 支付成功
	OrderShipped  = "ship"    // 卖家发货
	OrderReceived = "receive" // 买家确认收货
	OrderFinished = "finish"  // 交易完成
	OrderCanceled = "cancel"  // 取消/超时关闭
	OrderRefunded = "refund"  // 退款完成
)

// OrderEvent 订单领域事件载荷
type OrderEvent struct {
	OrderID  uint64 `json:"order_id"`
	BuyerID  string `json:"buyer_id"`
	SellerID string `json:"seller_id"`
	OrderNo  string `json:"order_no"`
	Type     string `json:"type"`
}

// CommunityEvent 社区互动事件载荷
type CommunityEvent struct {
	PostID     uint64 `json:"post_id"`
	OperatorID string `json:"operator_id"`
	AuthorID   string `json:"author_id"`
	Action     string `json:"action"`
}

// Event 事件信封
// EventID 在发布时生成且不随重投变化，消费方以它做去重。
// 反序列化时未知字段直接忽略，新增字段不影响旧消费者。
type Event struct {
	EventID    string          `json:"event_id"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Order      *OrderEvent     `json:"order,omitempty"`
	Community  *CommunityEvent `json:"community,omitempty"`
}

// NewOrderEvent 构造订单事件，路由键为 "order.<type>"
func NewOrderEvent(payload OrderEvent) *Event {
	return &Event{
		EventID:    uuid.New().String(),
		Key:        "order." + payload.Type,
		OccurredAt: time.Now(),
		Order:      &payload,
	}
}

// NewCommunityEvent 构造社区事件，路由键为 "community.<action>"
func NewCommunityEvent(payload CommunityEvent) *Event {
	return &Event{
		EventID:    uuid.New().String(),
		Key:        "community." + payload.Action,
		OccurredAt: time.Now(),
		Community:  &payload,
	}
}

// Topic 路由键的顶级主题，如 "order.pay" -> "order"
func (e *Event) Topic() string {
	return TopicOf(e.Key)
}

// TopicOf 取路由键或订阅模式的顶级主题
func TopicOf(key string) string {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i]
	}
	return key
}

// Match 判断订阅模式是否匹配路由键
//
// 模式规则：
//   - "#" 匹配任意路由键
//   - "order.#" 匹配 "order." 开头的任意路由键
//   - 其余为精确匹配
func Match(pattern, key string) bool {
	if pattern == "#" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, ".#"); ok {
		return strings.HasPrefix(key, prefix+".")
	}
	return pattern == key
}
