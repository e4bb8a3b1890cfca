package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"market/app/models/payment"
	"market/pkg/database"
)

// PaymentRepository 支付记录仓库
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建仓库实例
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		db: database.DB,
	}
}

// WithDB 返回使用指定连接（事务）的仓库副本
func (r *PaymentRepository) WithDB(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create 创建支付记录
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save 保存支付记录
func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// GetSuccessByOrderNo 查询订单下已成功的支付记录，不存在返回 nil
func (r *PaymentRepository) GetSuccessByOrderNo(ctx context.Context, orderNo string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("order_no = ? AND pay_status = ?", orderNo, string(payment.StatusSuccess)).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByPlatformTradeNo 按平台交易号查询，不存在返回 nil
func (r *PaymentRepository) GetByPlatformTradeNo(ctx context.Context, tradeNo string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("platform_trade_no = ?", tradeNo).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPendingByOrderNo 查询订单下待支付的记录，不存在返回 nil
func (r *PaymentRepository) GetPendingByOrderNo(ctx context.Context, orderNo string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("order_no = ? AND pay_status = ?", orderNo, string(payment.StatusPending)).
		Order("id DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
