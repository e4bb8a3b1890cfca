package migrations

import (
	"market/app/models/evaluation"
	"market/app/models/order"
	"market/app/models/payment"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&order.Order{},
		&payment.Payment{},
		&evaluation.Evaluation{},
	}
}
