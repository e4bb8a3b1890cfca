package requests

import "github.com/thedevsaddam/govalidator"

// SubmitEvaluationRequest 提交评价请求
type SubmitEvaluationRequest struct {
	OrderID uint64   `json:"order_id" valid:"order_id"`
	UserID  string   `json:"user_id" valid:"user_id"`
	Score   int      `json:"score" valid:"score"`
	Content string   `json:"content" valid:"content"`
	Images  []string `json:"images"`
	Tags    []string `json:"tags"`
}

// SubmitEvaluationRules 提交评价验证规则
// 数量上限（图片、标签）和内容长度在服务层二次校验。
func SubmitEvaluationRules() (govalidator.MapData, govalidator.MapData) {
	rules := govalidator.MapData{
		"order_id": []string{"required"},
		"user_id":  []string{"required", "min:1", "max:36"},
		"score":    []string{"required", "numeric_between:1,5"},
		"content":  []string{"required", "max:500"},
	}
	messages := govalidator.MapData{
		"order_id": []string{"required:订单 ID 不能为空"},
		"user_id":  []string{"required:用户 ID 不能为空"},
		"score": []string{
			"required:评分不能为空",
			"numeric_between:评分必须在 1 到 5 之间",
		},
		"content": []string{
			"required:评价内容不能为空",
			"max:评价内容不能超过 500 字",
		},
	}
	return rules, messages
}
