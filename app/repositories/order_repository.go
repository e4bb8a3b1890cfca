package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"market/app/models/order"
	"market/pkg/database"
)

// OrderRepository 订单仓库
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建仓库实例
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		db: database.DB,
	}
}

// WithDB 返回使用指定连接（事务）的仓库副本
func (r *OrderRepository) WithDB(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// GetByID 按主键查询订单
func (r *OrderRepository) GetByID(ctx context.Context, id uint64) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByOrderNo 按业务单号查询订单
func (r *OrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus 条件更新订单状态
//
// WHERE status = from 的条件让并发迁移只有一个成功；
// 返回受影响行数，0 行表示状态已被别的请求改走。
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uint64, from, to order.Status, stamps map[string]interface{}) (int64, error) {
	values := map[string]interface{}{"status": string(to)}
	for column, value := range stamps {
		values[column] = value
	}

	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND status = ?", orderID, string(from)).
		Updates(values)
	return result.RowsAffected, result.Error
}

// ListPayExpired 查询支付超时的待支付订单
func (r *OrderRepository) ListPayExpired(ctx context.Context, before time.Time, limit int) ([]order.Order, error) {
	var orders []order.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND pay_expire_at IS NOT NULL AND pay_expire_at < ?", string(order.StatusPendingPayment), before).
		Order("pay_expire_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
