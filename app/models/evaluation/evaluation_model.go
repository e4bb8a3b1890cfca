// Package evaluation 存放评价 Model 相关逻辑
package evaluation

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"market/app/models"
)

// Evaluation 评价模型
//
// order_id 上的唯一索引是"一单一评"的最终保障：并发提交时
// 先检查后插入的竞态由该索引在写入点关死，重复键错误即重复信号。
type Evaluation struct {
	models.BaseModel

	OrderID     uint64     `gorm:"column:order_id;uniqueIndex" json:"order_id"`
	UserID      string     `gorm:"column:user_id;type:varchar(36);index" json:"user_id"`           // 评价人（订单买家）
	EvaluateeID string     `gorm:"column:evaluatee_id;type:varchar(36);index" json:"evaluatee_id"` // 被评价人（订单卖家）
	ProductID   uint64     `gorm:"column:product_id;index" json:"product_id"`
	Score       int        `gorm:"column:score;not null" json:"score"` // 1-5 星
	Content     string     `gorm:"column:content;type:varchar(500)" json:"content"`
	Images      StringList `gorm:"column:images;type:json" json:"images"`
	Tags        StringList `gorm:"column:tags;type:json" json:"tags"`
	Status      string     `gorm:"column:status;type:varchar(20);index" json:"status"`

	models.CommonTimestampsField
}

// TableName 表名
func (Evaluation) TableName() string {
	return "evaluations"
}

// StringList 以 JSON 存储的字符串列表
type StringList []string

// Value 实现 driver.Valuer 接口
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan 实现 sql.Scanner 接口
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("invalid scan source for StringList")
	}
}
