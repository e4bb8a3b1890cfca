// Package routes 注册路由
package routes

import (
	"github.com/gin-gonic/gin"

	v1 "market/app/http/controllers/api/v1"
	"market/app/http/middlewares"
)

// 路由限流配置
const (
	// 全局限流：每小时每 IP 10000 请求
	GlobalRateLimit = "10000-H"
	// 写操作限流：每分钟每 IP 60 请求
	WriteRateLimit = "60-M"
	// 查询限流：每分钟每 IP 300 请求
	QueryRateLimit = "300-M"
)

// Controllers API 控制器集合
type Controllers struct {
	Orders      *v1.OrdersController
	Payments    *v1.PaymentsController
	Evaluations *v1.EvaluationsController
	Scores      *v1.ScoresController
}

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine, ctrl *Controllers) {
	// 支付平台异步回调，在限流和安全头之外单独注册
	r.POST("/v1/payments/notify/:provider", ctrl.Payments.Notify)

	apiV1 := r.Group("/v1")
	apiV1.Use(
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	// 订单
	orders := apiV1.Group("/orders")
	{
		orders.POST("", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Orders.Store)
		orders.GET("/:id", middlewares.LimitPerRoute(QueryRateLimit), ctrl.Orders.Show)
		orders.POST("/:id/ship", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Orders.Ship)
		orders.POST("/:id/receive", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Orders.Receive)
		orders.POST("/:id/confirm", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Orders.Confirm)
		orders.POST("/:id/cancel", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Orders.Cancel)
		orders.POST("/:id/refund", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Orders.Refund)
		orders.POST("/:id/refund/agree", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Orders.AgreeRefund)
		orders.GET("/:id/evaluation", middlewares.LimitPerRoute(QueryRateLimit), ctrl.Evaluations.ShowByOrder)
	}

	// 支付
	payments := apiV1.Group("/payments")
	{
		payments.POST("", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Payments.Store)
	}

	// 评价
	evaluations := apiV1.Group("/evaluations")
	{
		evaluations.POST("", middlewares.LimitPerRoute(WriteRateLimit), ctrl.Evaluations.Store)
	}

	// 评分聚合
	scores := apiV1.Group("/scores")
	{
		scores.GET("/sellers/:id", middlewares.LimitPerRoute(QueryRateLimit), ctrl.Scores.Seller)
		scores.GET("/products/:id", middlewares.LimitPerRoute(QueryRateLimit), ctrl.Scores.Product)
	}
}
