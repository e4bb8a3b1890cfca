package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"market/pkg/logger"
	"market/pkg/redis"
)

// Publisher 事件发布接口，业务层只依赖它
type Publisher interface {
	Publish(ctx context.Context, e *Event)
}

// Handler 订阅方处理函数
// 返回错误只做记录，事件不会因处理失败而重新投递；
// 需要重试语义的副作用应走任务队列。
type Handler func(ctx context.Context, e *Event) error

// Deduper 消费去重接口
// FirstSeen 返回 true 表示该订阅方第一次见到这个事件；
// 去重存储本身不可用时返回错误，与"已见过"区分开。
type Deduper interface {
	FirstSeen(subscriber, eventID string) (bool, error)
}

// RedisDeduper 基于 Redis SETNX 的去重实现
type RedisDeduper struct {
	client *redis.RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedisDeduper 创建去重器，ttl 覆盖网关和总线的重投窗口
func NewRedisDeduper(prefix string, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{
		client: redis.GetRedis(redis.MainDB),
		prefix: prefix,
		ttl:    ttl,
	}
}

// FirstSeen SETNX 成功即首次消费
func (d *RedisDeduper) FirstSeen(subscriber, eventID string) (bool, error) {
	key := fmt.Sprintf("%s:dedup:%s:%s", d.prefix, subscriber, eventID)
	return d.client.SetNX(key, 1, d.ttl)
}

// subscription 一条订阅登记
type subscription struct {
	name    string // 订阅方名称，去重的命名空间
	pattern string // 路由键模式，如 "order.#"
	handler Handler
}

// Bus Redis 列表实现的事件总线
//
// 发布方 LPUSH 后即返回，不等待消费；每个顶级主题一个列表，
// 消费协程 BRPOP 取出后在进程内按模式分发给订阅方。
type Bus struct {
	client      *redis.RedisClient
	prefix      string
	deduper     Deduper
	mu          sync.RWMutex
	subscribers []subscription
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewBus 创建事件总线
func NewBus(prefix string, deduper Deduper) *Bus {
	return &Bus{
		client:   redis.GetRedis(redis.QueueDB),
		prefix:   prefix,
		deduper:  deduper,
		stopChan: make(chan struct{}),
	}
}

// Subscribe 登记订阅，需在 Start 之前调用
func (b *Bus) Subscribe(name, pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscription{
		name:    name,
		pattern: pattern,
		handler: handler,
	})
}

// Publish 发布事件
// 发布失败只记日志：事件是主写之后的衍生事实，不能反过来让主写失败。
func (b *Bus) Publish(ctx context.Context, e *Event) {
	body, err := json.Marshal(e)
	if err != nil {
		logger.ErrorString("EventBus", "Publish", "事件序列化失败: "+err.Error())
		return
	}

	if err := b.client.Client.LPush(ctx, b.topicKey(e.Topic()), body).Err(); err != nil {
		logger.ErrorString("EventBus", "Publish",
			fmt.Sprintf("事件发布失败 key=%s event_id=%s: %v", e.Key, e.EventID, err))
	}
}

// Start 为订阅覆盖到的每个主题启动消费协程
func (b *Bus) Start() {
	for _, topic := range b.topics() {
		b.wg.Add(1)
		go b.consumeLoop(topic)
	}
}

// Stop 停止消费并等待在途事件分发完成
func (b *Bus) Stop() {
	close(b.stopChan)
	b.wg.Wait()
}

// topics 订阅模式涉及的顶级主题去重列表
func (b *Bus) topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]bool)
	var topics []string
	for _, sub := range b.subscribers {
		topic := TopicOf(sub.pattern)
		if !seen[topic] {
			seen[topic] = true
			topics = append(topics, topic)
		}
	}
	return topics
}

func (b *Bus) topicKey(topic string) string {
	return b.prefix + ":events:" + topic
}

// consumeLoop 单主题消费循环
func (b *Bus) consumeLoop(topic string) {
	defer b.wg.Done()

	logger.InfoString("EventBus", "Consume", "开始消费主题 "+topic)

	for {
		select {
		case <-b.stopChan:
			logger.InfoString("EventBus", "Consume", "停止消费主题 "+topic)
			return
		default:
			e, err := b.pop(topic)
			if err != nil {
				logger.ErrorString("EventBus", "Consume", err.Error())
				time.Sleep(time.Second)
				continue
			}
			if e == nil {
				continue
			}
			b.dispatch(context.Background(), e)
		}
	}
}

// pop 阻塞取一个事件，超时返回 nil
func (b *Bus) pop(topic string) (*Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := b.client.Client.BRPop(ctx, 3*time.Second, b.topicKey(topic)).Result()
	if err != nil {
		if err == goredis.Nil || err == context.DeadlineExceeded {
			return nil, nil
		}
		return nil, fmt.Errorf("事件出队失败: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("事件出队返回异常: %v", result)
	}

	var e Event
	if err := json.Unmarshal([]byte(result[1]), &e); err != nil {
		return nil, fmt.Errorf("事件反序列化失败: %w", err)
	}
	return &e, nil
}

// dispatch 把事件分发给匹配的订阅方
// 每个订阅方独立去重：同一事件重投时 FirstSeen 返回 false，跳过处理。
func (b *Bus) dispatch(ctx context.Context, e *Event) {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, sub := range subs {
		if !Match(sub.pattern, e.Key) {
			continue
		}

		if b.deduper != nil {
			first, err := b.deduper.FirstSeen(sub.name, e.EventID)
			if err != nil {
				// 去重存储故障时放行处理，处理方自身幂等兜底
				logger.WarnString("EventBus", "Dedup",
					fmt.Sprintf("去重检查失败 subscriber=%s event_id=%s: %v，按首次消费处理",
						sub.name, e.EventID, err))
			} else if !first {
				logger.InfoString("EventBus", "Dedup",
					fmt.Sprintf("订阅方 %s 已消费过事件 %s，跳过", sub.name, e.EventID))
				continue
			}
		}

		if err := sub.handler(ctx, e); err != nil {
			logger.ErrorString("EventBus", "Handle",
				fmt.Sprintf("订阅方 %s 处理事件 %s 失败: %v", sub.name, e.EventID, err))
		}
	}
}
