package payment

// Status 支付状态
type Status string

const (
	StatusPending  Status = "pending"  // 待支付
	StatusSuccess  Status = "success"  // 支付成功
	StatusFail     Status = "fail"     // 支付失败
	StatusCanceled Status = "canceled" // 已取消
	StatusRefunded Status = "refunded" // 已退款
)

// IsSuccess 检查支付是否成功
func (p *Payment) IsSuccess() bool {
	return p.PayStatus == string(StatusSuccess)
}

// IsPending 检查是否待支付
func (p *Payment) IsPending() bool {
	return p.PayStatus == string(StatusPending)
}
