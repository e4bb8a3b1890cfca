package v1

import (
	"github.com/gin-gonic/gin"

	"market/app/requests"
	"market/app/services"
	"market/pkg/logger"
	"market/pkg/payment/types"
	"market/pkg/response"
)

// GatewayResolver 按提供商取支付网关
type GatewayResolver func(provider types.Provider) (types.Gateway, error)

// PaymentsController 支付接口
type PaymentsController struct {
	BaseAPIController
	payments *services.PaymentService
	resolve  GatewayResolver
}

// NewPaymentsController 创建支付控制器
func NewPaymentsController(payments *services.PaymentService, resolve GatewayResolver) *PaymentsController {
	return &PaymentsController{payments: payments, resolve: resolve}
}

// Store 发起支付
func (ctrl *PaymentsController) Store(c *gin.Context) {
	rules, messages := requests.CreatePaymentRules()
	req, err := requests.ValidateRequest[requests.CreatePaymentRequest](c, rules, messages)
	if err != nil {
		handleValidationError(c, err)
		return
	}

	provider := types.Provider(req.Provider)
	gateway, err := ctrl.resolve(provider)
	if err != nil {
		logger.ErrorString("支付", "网关", err.Error())
		response.Abort500(c)
		return
	}

	result, err := ctrl.payments.CreatePayment(c.Request.Context(), gateway, req.OrderNo, provider)
	if err != nil {
		response.BizError(c, err)
		return
	}
	response.Data(c, result)
}

// Notify 支付平台异步回调
// 应答体是平台要求的裸字符串，不走统一响应结构。
func (ctrl *PaymentsController) Notify(c *gin.Context) {
	provider := types.Provider(c.Param("provider"))
	gateway, err := ctrl.resolve(provider)
	if err != nil {
		logger.ErrorString("支付", "网关", err.Error())
		c.String(400, "fail")
		return
	}

	result := ctrl.payments.HandleCallback(c.Request.Context(), gateway, c.Request)
	c.String(200, result)
}
