package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"market/pkg/config"
	"market/pkg/redis"
)

// 任务类型
// 主写提交后的尽力而为副作用都走这里：信用分调整、评分缓存失效、站内通知。
const (
	KindCreditAdjust    = "credit_adjust"
	KindScoreInvalidate = "score_invalidate"
	KindNotify          = "notify"
)

// Task 后置任务
// Attempts 记录已执行次数，重试时由 worker 递增后重新入队。
type Task struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTask 构造任务，payload 会被 JSON 序列化
func NewTask(kind string, payload interface{}) (*Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal task payload: %w", err)
	}
	return &Task{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   body,
		CreatedAt: time.Now(),
	}, nil
}

// Dispatcher 任务投递接口，业务层只依赖它
type Dispatcher interface {
	PushTask(ctx context.Context, task *Task) error
}

// QueueService Redis 任务队列
// 支持高并发入队（限流保护）和可靠的任务处理
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService 创建新的队列服务实例
func NewQueueService() *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 1000)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      redis.GetRedis(redis.QueueDB),
		prefix:      config.GetString("redis.queue_prefix", "market:tasks"),
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics(),
	}
}

// PushTask 将任务推送到队列
func (q *QueueService) PushTask(ctx context.Context, task *Task) error {
	// 应用限流
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordPushLatency(time.Since(start))
	}()

	taskJSON, err := json.Marshal(task)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := q.client.Client.LPush(ctx, q.queueKey(), taskJSON).Err(); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push task: %w", err)
	}

	q.metrics.RecordSuccess(OpPush)
	return nil
}

// PopTask 从队列中获取任务，超时返回 nil
func (q *QueueService) PopTask(ctx context.Context) (*Task, error) {
	result, err := q.client.Client.BRPop(ctx, 3*time.Second, q.queueKey()).Result()
	if err != nil {
		if err == goredis.Nil || err == context.DeadlineExceeded {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop task from queue: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("invalid result from queue")
	}

	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// Ping 检查队列服务健康状态
func (q *QueueService) Ping(ctx context.Context) error {
	return q.client.Ping()
}

func (q *QueueService) queueKey() string {
	return q.prefix + ":pending"
}
