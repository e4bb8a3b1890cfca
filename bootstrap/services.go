package bootstrap

import (
	"context"
	"fmt"
	"time"

	"market/app/listeners"
	"market/app/repositories"
	"market/app/services"
	"market/config"
	"market/pkg/cache"
	pkgconfig "market/pkg/config"
	"market/pkg/credit"
	"market/pkg/event"
	"market/pkg/identity"
	"market/pkg/logger"
	"market/pkg/notify"
	"market/pkg/payment/factory"
	"market/pkg/payment/types"
	"market/pkg/queue"
)

// Container 应用级依赖集合
// 服务与后台组件在此组装，控制器和 main 从这里取依赖。
type Container struct {
	Orders      *services.OrderService
	Payments    *services.PaymentService
	Evaluations *services.EvaluationService
	Scores      *services.ScoreService

	OrderRepo      *repositories.OrderRepository
	EvaluationRepo *repositories.EvaluationRepository

	Bus    *event.Bus
	Worker *queue.Worker

	ResolveGateway func(provider types.Provider) (types.Gateway, error)
}

// SetupServices 组装业务服务、事件总线和任务队列
// 需在 SetupDB 和 SetupRedis 之后调用。
func SetupServices() *Container {
	orderRepo := repositories.NewOrderRepository()
	paymentRepo := repositories.NewPaymentRepository()
	evaluationRepo := repositories.NewEvaluationRepository()

	// 事件总线与消费去重
	prefix := pkgconfig.GetString("redis.event_prefix", "market")
	dedupTTL := time.Duration(pkgconfig.GetInt("queue.dedup_ttl", 24*60*60)) * time.Second
	bus := event.NewBus(prefix, event.NewRedisDeduper(prefix, dedupTTL))

	// 后置任务队列
	queueService := queue.NewQueueService()
	worker := queue.NewWorker(queueService, queue.WorkerConfig{
		WorkerCount:   pkgconfig.GetInt("queue.worker_count", 10),
		MaxRetries:    pkgconfig.GetInt("queue.max_retries", 3),
		RetryInterval: time.Duration(pkgconfig.GetInt("queue.retry_interval", 1)) * time.Second,
	})

	// 外部服务端口
	identityClient := identity.NewClient(identity.Config{
		BaseURL: pkgconfig.GetString("services.identity.base_url"),
		Timeout: time.Duration(pkgconfig.GetInt("services.identity.timeout", 3)) * time.Second,
	})
	creditClient := credit.NewClient(credit.Config{
		BaseURL: pkgconfig.GetString("services.credit.base_url"),
		Timeout: time.Duration(pkgconfig.GetInt("services.credit.timeout", 5)) * time.Second,
	})
	notifyClient := notify.NewClient(notify.Config{
		BaseURL: pkgconfig.GetString("services.notify.base_url"),
		Timeout: time.Duration(pkgconfig.GetInt("services.notify.timeout", 3)) * time.Second,
	})

	// 业务服务
	orderService := services.NewOrderService(orderRepo, bus)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, bus)
	evaluationService := services.NewEvaluationService(evaluationRepo, orderRepo, identityClient, queueService)
	scoreService := services.NewScoreService(evaluationRepo, cache.NewRedisStore(prefix+":cache"))

	// 后置任务处理器
	followup := services.NewFollowupService(creditClient, scoreService, notifyClient)
	followup.Register(worker)

	// 事件订阅方
	listeners.NewOrderListener(notifyClient).Attach(bus)
	listeners.NewCommunityListener(notifyClient).Attach(bus)

	return &Container{
		Orders:         orderService,
		Payments:       paymentService,
		Evaluations:    evaluationService,
		Scores:         scoreService,
		OrderRepo:      orderRepo,
		EvaluationRepo: evaluationRepo,
		Bus:            bus,
		Worker:         worker,
		ResolveGateway: resolveGateway,
	}
}

// Start 启动后台组件：事件消费、任务工作器、支付超时扫描
func (c *Container) Start(ctx context.Context) {
	c.Bus.Start()
	c.Worker.Start()
	go c.Orders.StartPayExpireScanner(ctx, time.Minute)

	logger.InfoString("Bootstrap", "Services", "事件总线与任务队列启动成功")
}

// Stop 停止后台组件，等待在途任务处理完成
func (c *Container) Stop() {
	c.Bus.Stop()
	c.Worker.Stop()
}

// resolveGateway 按提供商构建支付网关
func resolveGateway(provider types.Provider) (types.Gateway, error) {
	switch provider {
	case types.ProviderWechat:
		return factory.NewGateway(provider, config.LoadWechatConfig())
	case types.ProviderAlipay:
		return factory.NewGateway(provider, config.LoadAlipayConfig())
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}
