package services

import (
	"context"
	"encoding/json"
	"fmt"

	"market/pkg/credit"
	"market/pkg/logger"
	"market/pkg/notify"
	"market/pkg/queue"
)

// CreditAdjustPayload 信用分调整任务载荷
type CreditAdjustPayload struct {
	UserID string `json:"user_id"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// ScoreInvalidatePayload 评分缓存失效任务载荷
type ScoreInvalidatePayload struct {
	SellerID  string `json:"seller_id"`
	ProductID uint64 `json:"product_id"`
}

// NotifyPayload 站内通知任务载荷
type NotifyPayload struct {
	ReceiverID string `json:"receiver_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	BusinessID string `json:"business_id"`
}

// FollowupService 后置任务处理器
//
// 评价主写提交后的尽力而为副作用在这里消化。处理失败返回错误
// 交给 worker 重试；对端明确拒绝（如信用分越界）不算失败，不再重试。
type FollowupService struct {
	ledger credit.Ledger
	scores *ScoreService
	sink   notify.Sink
}

// NewFollowupService 创建后置任务处理器
func NewFollowupService(ledger credit.Ledger, scores *ScoreService, sink notify.Sink) *FollowupService {
	return &FollowupService{
		ledger: ledger,
		scores: scores,
		sink:   sink,
	}
}

// Register 把处理函数挂到工作器上
func (s *FollowupService) Register(worker *queue.Worker) {
	worker.Register(queue.KindCreditAdjust, s.HandleCreditAdjust)
	worker.Register(queue.KindScoreInvalidate, s.HandleScoreInvalidate)
	worker.Register(queue.KindNotify, s.HandleNotify)
}

// HandleCreditAdjust 调整卖家信用分
func (s *FollowupService) HandleCreditAdjust(ctx context.Context, task *queue.Task) error {
	var payload CreditAdjustPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		logger.ErrorString("后置任务", "信用分", "载荷解析失败，丢弃任务: "+err.Error())
		return nil
	}

	accepted, err := s.ledger.UpdateCreditScore(ctx, payload.UserID, payload.Delta, payload.Reason)
	if err != nil {
		return fmt.Errorf("调整信用分失败: %w", err)
	}
	if !accepted {
		logger.WarnString("后置任务", "信用分",
			fmt.Sprintf("信用服务拒绝调整 user=%s delta=%d", payload.UserID, payload.Delta))
	}
	return nil
}

// HandleScoreInvalidate 删除卖家和商品的评分聚合缓存
func (s *FollowupService) HandleScoreInvalidate(ctx context.Context, task *queue.Task) error {
	var payload ScoreInvalidatePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		logger.ErrorString("后置任务", "评分缓存", "载荷解析失败，丢弃任务: "+err.Error())
		return nil
	}

	s.scores.InvalidateSeller(payload.SellerID)
	s.scores.InvalidateProduct(payload.ProductID)
	return nil
}

// HandleNotify 给卖家发站内通知
func (s *FollowupService) HandleNotify(ctx context.Context, task *queue.Task) error {
	var payload NotifyPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		logger.ErrorString("后置任务", "通知", "载荷解析失败，丢弃任务: "+err.Error())
		return nil
	}

	return s.sink.Send(ctx, &notify.Message{
		ReceiverID: payload.ReceiverID,
		Title:      payload.Title,
		Content:    payload.Content,
		Type:       notify.TypeOrder,
		BusinessID: payload.BusinessID,
	})
}
