package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"market/app/models/evaluation"
	"market/app/models/order"
	"market/app/models/payment"
	"market/app/repositories"
	"market/pkg/database"
	"market/pkg/event"
	"market/pkg/identity"
	"market/pkg/queue"
)

// newTestDB 每个测试一个独立的内存 SQLite 库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&order.Order{}, &payment.Payment{}, &evaluation.Evaluation{}))

	database.DB = db
	return db
}

func orderRepo(db *gorm.DB) *repositories.OrderRepository {
	return repositories.NewOrderRepository().WithDB(db)
}

func paymentRepo(db *gorm.DB) *repositories.PaymentRepository {
	return repositories.NewPaymentRepository().WithDB(db)
}

func evaluationRepo(db *gorm.DB) *repositories.EvaluationRepository {
	return repositories.NewEvaluationRepository().WithDB(db)
}

// seedOrder 插入一条指定状态的订单
func seedOrder(t *testing.T, db *gorm.DB, status order.Status) *order.Order {
	t.Helper()

	expireAt := time.Now().Add(30 * time.Minute)
	o := &order.Order{
		OrderNo:     order.GenerateOrderNo(),
		ProductID:   100,
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		TotalAmount: 9900,
		Quantity:    1,
		Status:      string(status),
		PayExpireAt: &expireAt,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

// fakePublisher 记录发布的事件
type fakePublisher struct {
	events []*event.Event
}

func (p *fakePublisher) Publish(ctx context.Context, e *event.Event) {
	p.events = append(p.events, e)
}

func (p *fakePublisher) keys() []string {
	var keys []string
	for _, e := range p.events {
		keys = append(keys, e.Key)
	}
	return keys
}

// fakeDispatcher 记录投递的任务
type fakeDispatcher struct {
	tasks   []*queue.Task
	pushErr error
}

func (d *fakeDispatcher) PushTask(ctx context.Context, task *queue.Task) error {
	if d.pushErr != nil {
		return d.pushErr
	}
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *fakeDispatcher) kinds() []string {
	var kinds []string
	for _, task := range d.tasks {
		kinds = append(kinds, task.Kind)
	}
	return kinds
}

// fakeIdentity 按 map 回答用户查询
type fakeIdentity struct {
	users map[string]*identity.User
	err   error
}

func (s *fakeIdentity) GetUserByID(ctx context.Context, userID string) (*identity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[userID], nil
}

func (s *fakeIdentity) VerifyRole(ctx context.Context, userID, role string) (bool, error) {
	return s.users[userID] != nil, nil
}

// memoryStore 内存缓存实现
type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *memoryStore) Set(key string, value string, ttl time.Duration) {
	s.values[key] = value
}

func (s *memoryStore) Forget(key string) {
	delete(s.values, key)
}
