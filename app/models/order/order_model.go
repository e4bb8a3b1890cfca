// Package order 存放订单 Model 相关逻辑
package order

import (
	"time"

	"market/app/models"
)

// Order 订单模型
//
// total_amount 与 quantity 创建后不可变更；status 只沿状态机合法边推进。
type Order struct {
	models.BaseModel

	OrderNo     string `gorm:"column:order_no;type:varchar(64);uniqueIndex" json:"order_no"` // 对外业务单号，创建后不变
	ProductID   uint64 `gorm:"column:product_id;index" json:"product_id"`
	BuyerID     string `gorm:"column:buyer_id;type:varchar(36);index" json:"buyer_id"`
	SellerID    string `gorm:"column:seller_id;type:varchar(36);index" json:"seller_id"`
	TotalAmount int64  `gorm:"column:total_amount;not null" json:"total_amount"` // 单位：分
	Quantity    int    `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Status      string `gorm:"column:status;type:varchar(20);index" json:"status"`

	PaidAt      *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	ShippedAt   *time.Time `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	ReceivedAt  *time.Time `gorm:"column:received_at" json:"received_at,omitempty"`
	CanceledAt  *time.Time `gorm:"column:canceled_at" json:"canceled_at,omitempty"`
	PayExpireAt *time.Time `gorm:"column:pay_expire_at;index" json:"pay_expire_at,omitempty"`

	models.CommonTimestampsField
}

// TableName 表名
func (Order) TableName() string {
	return "orders"
}
