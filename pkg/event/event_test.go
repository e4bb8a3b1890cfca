package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	assert.True(t, Match("#", "order.pay"))
	assert.True(t, Match("#", "community.like"))

	assert.True(t, Match("order.#", "order.pay"))
	assert.True(t, Match("order.#", "order.cancel"))
	assert.False(t, Match("order.#", "community.like"))
	assert.False(t, Match("order.#", "order"))

	assert.True(t, Match("order.pay", "order.pay"))
	assert.False(t, Match("order.pay", "order.ship"))
}

func TestTopicOf(t *testing.T) {
	assert.Equal(t, "order", TopicOf("order.pay"))
	assert.Equal(t, "order", TopicOf("order.#"))
	assert.Equal(t, "order", TopicOf("order"))
	assert.Equal(t, "#", TopicOf("#"))
}

func TestNewOrderEvent(t *testing.T) {
	e := NewOrderEvent(OrderEvent{OrderID: 7, OrderNo: "20260101000000000001", Type: OrderPaid})

	assert.Equal(t, "order.pay", e.Key)
	assert.Equal(t, "order", e.Topic())
	assert.NotEmpty(t, e.EventID)
	assert.NotNil(t, e.Order)
	assert.Equal(t, uint64(7), e.Order.OrderID)

	another := NewOrderEvent(OrderEvent{OrderID: 7, Type: OrderPaid})
	assert.NotEqual(t, e.EventID, another.EventID)
}

// fakeDeduper 记录每个订阅方见过的事件
type fakeDeduper struct {
	seen map[string]bool
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: make(map[string]bool)}
}

func (d *fakeDeduper) FirstSeen(subscriber, eventID string) (bool, error) {
	key := subscriber + ":" + eventID
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

// brokenDeduper 模拟去重存储不可用
type brokenDeduper struct{}

func (brokenDeduper) FirstSeen(subscriber, eventID string) (bool, error) {
	return false, assert.AnError
}

func TestDispatchPatternAndDedup(t *testing.T) {
	bus := &Bus{deduper: newFakeDeduper()}

	var orderHits, allHits, communityHits int
	bus.Subscribe("order-sub", "order.#", func(ctx context.Context, e *Event) error {
		orderHits++
		return nil
	})
	bus.Subscribe("all-sub", "#", func(ctx context.Context, e *Event) error {
		allHits++
		return nil
	})
	bus.Subscribe("community-sub", "community.#", func(ctx context.Context, e *Event) error {
		communityHits++
		return nil
	})

	e := NewOrderEvent(OrderEvent{OrderID: 1, Type: OrderPaid})
	bus.dispatch(context.Background(), e)

	assert.Equal(t, 1, orderHits)
	assert.Equal(t, 1, allHits)
	assert.Equal(t, 0, communityHits)

	// 同一事件重投：所有订阅方都应跳过
	bus.dispatch(context.Background(), e)
	assert.Equal(t, 1, orderHits)
	assert.Equal(t, 1, allHits)

	// 新事件正常投递
	bus.dispatch(context.Background(), NewOrderEvent(OrderEvent{OrderID: 1, Type: OrderShipped}))
	assert.Equal(t, 2, orderHits)
	assert.Equal(t, 2, allHits)
}

func TestDispatchDeduperFailureDoesNotDropEvent(t *testing.T) {
	bus := &Bus{deduper: brokenDeduper{}}

	var hits int
	bus.Subscribe("order-sub", "order.#", func(ctx context.Context, e *Event) error {
		hits++
		return nil
	})

	// 去重存储故障时事件照常投递，不当作已消费
	bus.dispatch(context.Background(), NewOrderEvent(OrderEvent{OrderID: 3, Type: OrderPaid}))
	assert.Equal(t, 1, hits)
}

func TestDispatchHandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := &Bus{deduper: newFakeDeduper()}

	var secondCalled bool
	bus.Subscribe("failing", "order.#", func(ctx context.Context, e *Event) error {
		return assert.AnError
	})
	bus.Subscribe("healthy", "order.#", func(ctx context.Context, e *Event) error {
		secondCalled = true
		return nil
	})

	bus.dispatch(context.Background(), NewOrderEvent(OrderEvent{OrderID: 2, Type: OrderPaid}))
	assert.True(t, secondCalled)
}

func TestTopics(t *testing.T) {
	bus := &Bus{}
	bus.Subscribe("a", "order.#", nil)
	bus.Subscribe("b", "order.pay", nil)
	bus.Subscribe("c", "community.#", nil)

	topics := bus.topics()
	assert.ElementsMatch(t, []string{"order", "community"}, topics)
}
