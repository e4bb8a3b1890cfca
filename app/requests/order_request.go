package requests

import "github.com/thedevsaddam/govalidator"

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	ProductID   uint64 `json:"product_id" valid:"product_id"`
	BuyerID     string `json:"buyer_id" valid:"buyer_id"`
	SellerID    string `json:"seller_id" valid:"seller_id"`
	TotalAmount int64  `json:"total_amount" valid:"total_amount"`
	Quantity    int    `json:"quantity" valid:"quantity"`
}

// CreateOrderRules 下单验证规则
func CreateOrderRules() (govalidator.MapData, govalidator.MapData) {
	rules := govalidator.MapData{
		"product_id":   []string{"required"},
		"buyer_id":     []string{"required", "min:1", "max:36"},
		"seller_id":    []string{"required", "min:1", "max:36"},
		"total_amount": []string{"required"},
		"quantity":     []string{"required"},
	}
	messages := govalidator.MapData{
		"product_id":   []string{"required:商品 ID 不能为空"},
		"buyer_id":     []string{"required:买家 ID 不能为空"},
		"seller_id":    []string{"required:卖家 ID 不能为空"},
		"total_amount": []string{"required:订单金额不能为空"},
		"quantity":     []string{"required:购买数量不能为空"},
	}
	return rules, messages
}
