package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"market/app/repositories"
	"market/app/requests"
	"market/app/services"
	"market/pkg/response"
)

// EvaluationsController 评价接口
type EvaluationsController struct {
	BaseAPIController
	evaluations *services.EvaluationService
	repo        *repositories.EvaluationRepository
}

// NewEvaluationsController 创建评价控制器
func NewEvaluationsController(evaluations *services.EvaluationService, repo *repositories.EvaluationRepository) *EvaluationsController {
	return &EvaluationsController{evaluations: evaluations, repo: repo}
}

// Store 提交评价
func (ctrl *EvaluationsController) Store(c *gin.Context) {
	rules, messages := requests.SubmitEvaluationRules()
	req, err := requests.ValidateRequest[requests.SubmitEvaluationRequest](c, rules, messages)
	if err != nil {
		handleValidationError(c, err)
		return
	}

	e, err := ctrl.evaluations.Submit(c.Request.Context(), &services.SubmitParams{
		OrderID: req.OrderID,
		UserID:  req.UserID,
		Score:   req.Score,
		Content: req.Content,
		Images:  req.Images,
		Tags:    req.Tags,
	})
	if err != nil {
		response.BizError(c, err)
		return
	}
	response.Created(c, e, "评价成功")
}

// ShowByOrder 查询订单的评价
func (ctrl *EvaluationsController) ShowByOrder(c *gin.Context) {
	orderID := cast.ToUint64(c.Param("id"))
	if orderID == 0 {
		response.Abort400(c, "订单 ID 不合法")
		return
	}

	e, err := ctrl.repo.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "该订单暂无评价")
			return
		}
		response.BizError(c, err)
		return
	}
	response.Data(c, e)
}
