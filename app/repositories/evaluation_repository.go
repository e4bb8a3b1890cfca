package repositories

import (
	"context"

	"gorm.io/gorm"

	"market/app/models/evaluation"
	"market/pkg/database"
)

// EvaluationRepository 评价仓库
type EvaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository 创建仓库实例
func NewEvaluationRepository() *EvaluationRepository {
	return &EvaluationRepository{
		db: database.DB,
	}
}

// WithDB 返回使用指定连接（事务）的仓库副本
func (r *EvaluationRepository) WithDB(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create 创建评价
// order_id 唯一索引冲突时返回 gorm.ErrDuplicatedKey，调用方据此识别重复提交。
func (r *EvaluationRepository) Create(ctx context.Context, e *evaluation.Evaluation) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ExistsByOrderID 订单是否已有评价（快速路径，最终以唯一索引为准）
func (r *EvaluationRepository) ExistsByOrderID(ctx context.Context, orderID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&evaluation.Evaluation{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

// GetByOrderID 按订单查询评价
func (r *EvaluationRepository) GetByOrderID(ctx context.Context, orderID uint64) (*evaluation.Evaluation, error) {
	var e evaluation.Evaluation
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// StarCountsBySeller 统计卖家各星级评价数量（剔除已删除）
func (r *EvaluationRepository) StarCountsBySeller(ctx context.Context, sellerID string) ([5]int64, error) {
	return r.starCounts(ctx, "evaluatee_id = ?", sellerID)
}

// StarCountsByProduct 统计商品各星级评价数量（剔除已删除）
func (r *EvaluationRepository) StarCountsByProduct(ctx context.Context, productID uint64) ([5]int64, error) {
	return r.starCounts(ctx, "product_id = ?", productID)
}

func (r *EvaluationRepository) starCounts(ctx context.Context, cond string, arg interface{}) ([5]int64, error) {
	var counts [5]int64

	var rows []struct {
		Score int
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&evaluation.Evaluation{}).
		Select("score, COUNT(*) AS count").
		Where(cond, arg).
		Where("status <> ?", string(evaluation.StatusDeleted)).
		Group("score").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}

	for _, row := range rows {
		if row.Score >= 1 && row.Score <= 5 {
			counts[row.Score-1] = row.Count
		}
	}
	return counts, nil
}
