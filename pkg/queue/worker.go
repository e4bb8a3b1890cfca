package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market/pkg/logger"
)

// Handler 任务处理函数
type Handler func(ctx context.Context, task *Task) error

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	MaxRetries      int           // 单个任务最大重试次数
	RetryInterval   time.Duration // 重试间隔
	ShutdownTimeout time.Duration // 关闭超时时间
}

// Worker 队列工作器组
//
// 任务处理失败时递增 Attempts 重新入队，超过 MaxRetries 后丢弃并记日志。
// 这是信用分调整等尽力而为副作用的最终一致性边界。
type Worker struct {
	queueService *QueueService
	handlers     map[string]Handler
	mu           sync.RWMutex
	stopChan     chan struct{}
	metrics      *QueueMetrics
	wg           sync.WaitGroup
	config       WorkerConfig
}

// NewWorker 创建新的工作器组
func NewWorker(qs *QueueService, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 10
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queueService: qs,
		handlers:     make(map[string]Handler),
		stopChan:     make(chan struct{}),
		metrics:      NewQueueMetrics(),
		config:       config,
	}
}

// Register 按任务类型登记处理函数，需在 Start 之前调用
func (w *Worker) Register(kind string, handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = handler
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 启动单个工作器
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Worker %d stopping", id))
			return
		default:
			if err := w.processNextTask(); err != nil {
				logger.ErrorString("Worker", "Error", fmt.Sprintf("Worker %d error: %v", id, err))
				time.Sleep(time.Second) // 错误恢复延迟
			}
		}
	}
}

// processNextTask 取出并处理下一个任务
func (w *Worker) processNextTask() error {
	start := time.Now()
	defer func() {
		w.metrics.RecordProcessingTime(time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	task, err := w.queueService.PopTask(ctx)
	if err != nil {
		return fmt.Errorf("pop task error: %w", err)
	}
	if task == nil {
		return nil
	}

	return w.handleTask(ctx, task)
}

// handleTask 处理单个任务
func (w *Worker) handleTask(ctx context.Context, task *Task) error {
	w.mu.RLock()
	handler, ok := w.handlers[task.Kind]
	w.mu.RUnlock()

	if !ok {
		// 没有对应处理器的任务直接丢弃，避免反复重试
		logger.WarnString("Worker", "Handle", "未注册的任务类型: "+task.Kind)
		return nil
	}

	taskCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if err := handler(taskCtx, task); err != nil {
		w.metrics.RecordError(OpProcess)
		return w.retry(ctx, task, err)
	}

	w.metrics.RecordSuccess(OpProcess)
	return nil
}

// retry 失败重试
// 超过最大重试次数的任务只记日志后放弃，不回滚已提交的主写。
func (w *Worker) retry(ctx context.Context, task *Task, cause error) error {
	task.Attempts++
	if task.Attempts >= w.config.MaxRetries {
		logger.ErrorString("Worker", "Drop",
			fmt.Sprintf("任务 %s(%s) 重试 %d 次后放弃: %v", task.ID, task.Kind, task.Attempts, cause))
		return nil
	}

	logger.WarnString("Worker", "Retry",
		fmt.Sprintf("任务 %s(%s) 第 %d 次失败，稍后重试: %v", task.ID, task.Kind, task.Attempts, cause))

	time.Sleep(w.config.RetryInterval)

	if err := w.queueService.PushTask(ctx, task); err != nil {
		return fmt.Errorf("re-push task error: %w", err)
	}
	return nil
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "Worker shutdown timed out")
	}
}
