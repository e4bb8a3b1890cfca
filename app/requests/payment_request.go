package requests

import "github.com/thedevsaddam/govalidator"

// CreatePaymentRequest 发起支付请求
type CreatePaymentRequest struct {
	OrderNo  string `json:"order_no" valid:"order_no"`
	Provider string `json:"provider" valid:"provider"`
}

// CreatePaymentRules 发起支付验证规则
func CreatePaymentRules() (govalidator.MapData, govalidator.MapData) {
	rules := govalidator.MapData{
		"order_no": []string{"required", "max:64"},
		"provider": []string{"required", "in:wechat,alipay"},
	}
	messages := govalidator.MapData{
		"order_no": []string{"required:订单号不能为空"},
		"provider": []string{"required:支付方式不能为空", "in:支付方式只支持 wechat 和 alipay"},
	}
	return rules, messages
}
