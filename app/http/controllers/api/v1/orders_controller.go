package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"market/app/models/order"
	"market/app/requests"
	"market/app/services"
	"market/pkg/response"
)

// OrdersController 订单接口
type OrdersController struct {
	BaseAPIController
	orders *services.OrderService
}

// NewOrdersController 创建订单控制器
func NewOrdersController(orders *services.OrderService) *OrdersController {
	return &OrdersController{orders: orders}
}

// Store 创建订单
func (ctrl *OrdersController) Store(c *gin.Context) {
	rules, messages := requests.CreateOrderRules()
	req, err := requests.ValidateRequest[requests.CreateOrderRequest](c, rules, messages)
	if err != nil {
		handleValidationError(c, err)
		return
	}

	o, err := ctrl.orders.Create(c.Request.Context(), &services.CreateOrderParams{
		ProductID:   req.ProductID,
		BuyerID:     req.BuyerID,
		SellerID:    req.SellerID,
		TotalAmount: req.TotalAmount,
		Quantity:    req.Quantity,
	})
	if err != nil {
		response.BizError(c, err)
		return
	}
	response.Created(c, o)
}

// Show 订单详情
func (ctrl *OrdersController) Show(c *gin.Context) {
	orderID := cast.ToUint64(c.Param("id"))
	if orderID == 0 {
		response.Abort400(c, "订单 ID 不合法")
		return
	}

	o, err := ctrl.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		response.BizError(c, err)
		return
	}
	response.Data(c, o)
}

// Ship 卖家发货
func (ctrl *OrdersController) Ship(c *gin.Context) {
	ctrl.transition(c, order.StatusShipped, order.OperatorSeller)
}

// Receive 买家确认包裹送达
func (ctrl *OrdersController) Receive(c *gin.Context) {
	ctrl.transition(c, order.StatusPendingReceive, order.OperatorBuyer)
}

// Confirm 买家确认收货，交易完成
func (ctrl *OrdersController) Confirm(c *gin.Context) {
	ctrl.transition(c, order.StatusCompleted, order.OperatorBuyer)
}

// Cancel 买家取消待支付订单
func (ctrl *OrdersController) Cancel(c *gin.Context) {
	ctrl.transition(c, order.StatusCancelled, order.OperatorBuyer)
}

// Refund 买家发起退款争议
func (ctrl *OrdersController) Refund(c *gin.Context) {
	ctrl.transition(c, order.StatusRefunding, order.OperatorBuyer)
}

// AgreeRefund 卖家同意退款
func (ctrl *OrdersController) AgreeRefund(c *gin.Context) {
	ctrl.transition(c, order.StatusRefunded, order.OperatorSeller)
}

func (ctrl *OrdersController) transition(c *gin.Context, target order.Status, op order.Operator) {
	orderID := cast.ToUint64(c.Param("id"))
	if orderID == 0 {
		response.Abort400(c, "订单 ID 不合法")
		return
	}

	o, err := ctrl.orders.Transition(c.Request.Context(), orderID, target, op)
	if err != nil {
		response.BizError(c, err)
		return
	}
	response.Data(c, o)
}
