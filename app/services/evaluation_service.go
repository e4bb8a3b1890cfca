package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"market/app/models/evaluation"
	"market/app/models/order"
	"market/app/repositories"
	"market/pkg/errs"
	"market/pkg/identity"
	"market/pkg/logger"
	"market/pkg/queue"
)

// EvaluationService 交易评价
type EvaluationService struct {
	evaluations *repositories.EvaluationRepository
	orders      *repositories.OrderRepository
	identity    identity.Service
	dispatcher  queue.Dispatcher
}

// NewEvaluationService 创建评价服务
func NewEvaluationService(
	evaluations *repositories.EvaluationRepository,
	orders *repositories.OrderRepository,
	identitySvc identity.Service,
	dispatcher queue.Dispatcher,
) *EvaluationService {
	return &EvaluationService{
		evaluations: evaluations,
		orders:      orders,
		identity:    identitySvc,
		dispatcher:  dispatcher,
	}
}

// SubmitParams 提交评价的参数
type SubmitParams struct {
	OrderID uint64
	UserID  string
	Score   int
	Content string
	Images  []string
	Tags    []string
}

// Submit 提交评价
//
// 每笔订单只能评价一次：先查存在性做快速路径，最终以 order_id
// 唯一索引兜底，索引冲突映射为 conflict 错误。评价写入成功后
// 投递信用分调整、评分缓存失效和通知三个后置任务，投递失败只
// 记日志，不影响评价结果。
func (s *EvaluationService) Submit(ctx context.Context, params *SubmitParams) (*evaluation.Evaluation, error) {
	if err := validateSubmit(params); err != nil {
		return nil, err
	}

	user, err := s.identity.GetUserByID(ctx, params.UserID)
	if err != nil {
		return nil, errs.NewSystem("查询用户失败", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("用户不存在")
	}

	o, err := s.orders.GetByID(ctx, params.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("订单不存在")
		}
		return nil, errs.NewSystem("查询订单失败", err)
	}
	if o.BuyerID != params.UserID {
		return nil, errs.NewPermission("只有买家可以评价订单")
	}
	if !o.CanEvaluate() {
		return nil, errs.NewState("订单尚未完成，不能评价")
	}

	exists, err := s.evaluations.ExistsByOrderID(ctx, params.OrderID)
	if err != nil {
		return nil, errs.NewSystem("查询评价失败", err)
	}
	if exists {
		return nil, errs.NewConflict("该订单已评价")
	}

	e := &evaluation.Evaluation{
		OrderID:     o.ID,
		UserID:      params.UserID,
		EvaluateeID: o.SellerID,
		ProductID:   o.ProductID,
		Score:       params.Score,
		Content:     params.Content,
		Images:      params.Images,
		Tags:        params.Tags,
		Status:      string(evaluation.StatusNormal),
	}
	if err := s.evaluations.Create(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.NewConflict("该订单已评价")
		}
		return nil, errs.NewSystem("保存评价失败", err)
	}

	s.dispatchFollowups(ctx, e, o)
	return e, nil
}

// validateSubmit 参数校验
func validateSubmit(params *SubmitParams) error {
	if params.Score < evaluation.MinScore || params.Score > evaluation.MaxScore {
		return errs.NewValidation(fmt.Sprintf("评分必须在 %d 到 %d 之间", evaluation.MinScore, evaluation.MaxScore))
	}
	if strings.TrimSpace(params.Content) == "" {
		return errs.NewValidation("评价内容不能为空")
	}
	if utf8.RuneCountInString(params.Content) > evaluation.MaxContentLen {
		return errs.NewValidation(fmt.Sprintf("评价内容不能超过 %d 字", evaluation.MaxContentLen))
	}
	if len(params.Images) > evaluation.MaxImages {
		return errs.NewValidation(fmt.Sprintf("评价图片不能超过 %d 张", evaluation.MaxImages))
	}
	if len(params.Tags) > evaluation.MaxTags {
		return errs.NewValidation(fmt.Sprintf("评价标签不能超过 %d 个", evaluation.MaxTags))
	}
	return nil
}

// dispatchFollowups 投递评价落库后的后置任务
func (s *EvaluationService) dispatchFollowups(ctx context.Context, e *evaluation.Evaluation, o *order.Order) {
	if s.dispatcher == nil {
		return
	}

	if delta := evaluation.CreditDelta(e.Score); delta != 0 {
		s.push(ctx, queue.KindCreditAdjust, &CreditAdjustPayload{
			UserID: o.SellerID,
			Delta:  delta,
			Reason: fmt.Sprintf("订单 %s 评价 %d 星", o.OrderNo, e.Score),
		})
	}

	s.push(ctx, queue.KindScoreInvalidate, &ScoreInvalidatePayload{
		SellerID:  o.SellerID,
		ProductID: o.ProductID,
	})

	s.push(ctx, queue.KindNotify, &NotifyPayload{
		ReceiverID: o.SellerID,
		Title:      "收到新的交易评价",
		Content:    fmt.Sprintf("买家对订单 %s 给出了 %d 星评价", o.OrderNo, e.Score),
		BusinessID: o.OrderNo,
	})
}

func (s *EvaluationService) push(ctx context.Context, kind string, payload interface{}) {
	task, err := queue.NewTask(kind, payload)
	if err != nil {
		logger.ErrorString("评价", "后置任务", "构造任务失败: "+err.Error())
		return
	}
	if err := s.dispatcher.PushTask(ctx, task); err != nil {
		logger.ErrorString("评价", "后置任务",
			fmt.Sprintf("投递任务 %s 失败: %v", kind, err))
	}
}
