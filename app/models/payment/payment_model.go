// Package payment 存放支付记录 Model 相关逻辑
package payment

import (
	"time"

	"market/app/models"
)

// Payment 支付记录模型
//
// platform_trade_no 是第三方平台交易号，唯一索引挡住同一笔
// 成功回调的重复落库；callback_content 保留原始报文做审计。
type Payment struct {
	models.BaseModel

	OrderID         uint64     `gorm:"column:order_id;index" json:"order_id"`
	OrderNo         string     `gorm:"column:order_no;type:varchar(64);index" json:"order_no"`
	PayType         string     `gorm:"column:pay_type;type:varchar(20)" json:"pay_type"`
	PlatformTradeNo *string    `gorm:"column:platform_trade_no;type:varchar(64);uniqueIndex" json:"platform_trade_no,omitempty"` // 回调成功时写入，待支付记录为 NULL
	PayAmount       int64      `gorm:"column:pay_amount;not null;default:0" json:"pay_amount"` // 单位：分
	PayStatus       string     `gorm:"column:pay_status;type:varchar(20);index" json:"pay_status"`
	PayTime         *time.Time `gorm:"column:pay_time" json:"pay_time,omitempty"`
	CallbackTime    *time.Time `gorm:"column:callback_time" json:"callback_time,omitempty"`
	CallbackContent string     `gorm:"column:callback_content;type:text" json:"-"`

	models.CommonTimestampsField
}

// TableName 表名
func (Payment) TableName() string {
	return "payments"
}
