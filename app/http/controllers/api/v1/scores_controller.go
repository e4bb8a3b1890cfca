package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"market/app/services"
	"market/pkg/response"
)

// ScoresController 评分聚合接口
type ScoresController struct {
	BaseAPIController
	scores *services.ScoreService
}

// NewScoresController 创建评分控制器
func NewScoresController(scores *services.ScoreService) *ScoresController {
	return &ScoresController{scores: scores}
}

// Seller 卖家评分聚合
func (ctrl *ScoresController) Seller(c *gin.Context) {
	sellerID := c.Param("id")
	if sellerID == "" {
		response.Abort400(c, "卖家 ID 不合法")
		return
	}

	agg, err := ctrl.scores.SellerScore(c.Request.Context(), sellerID)
	if err != nil {
		response.BizError(c, err)
		return
	}
	response.Data(c, agg)
}

// Product 商品评分聚合
func (ctrl *ScoresController) Product(c *gin.Context) {
	productID := cast.ToUint64(c.Param("id"))
	if productID == 0 {
		response.Abort400(c, "商品 ID 不合法")
		return
	}

	agg, err := ctrl.scores.ProductScore(c.Request.Context(), productID)
	if err != nil {
		response.BizError(c, err)
		return
	}
	response.Data(c, agg)
}
