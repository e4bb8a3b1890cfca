package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"market/app/models/evaluation"
	"market/app/models/order"
	"market/pkg/errs"
	"market/pkg/identity"
	"market/pkg/queue"
)

func newEvaluationService(db *gorm.DB, dispatcher queue.Dispatcher) *EvaluationService {
	ident := &fakeIdentity{users: map[string]*identity.User{
		"buyer-1":  {ID: "buyer-1", Nickname: "买家"},
		"seller-1": {ID: "seller-1", Nickname: "卖家"},
	}}
	return NewEvaluationService(evaluationRepo(db), orderRepo(db), ident, dispatcher)
}

func submitParams(o *order.Order, score int) *SubmitParams {
	return &SubmitParams{
		OrderID: o.ID,
		UserID:  o.BuyerID,
		Score:   score,
		Content: "成色和描述一致",
		Tags:    []string{"发货快"},
	}
}

func TestSubmitEvaluation(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &fakeDispatcher{}
	svc := newEvaluationService(db, dispatcher)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusCompleted)

	e, err := svc.Submit(ctx, submitParams(o, 5))
	require.NoError(t, err)

	assert.Equal(t, o.ID, e.OrderID)
	assert.Equal(t, o.BuyerID, e.UserID)
	assert.Equal(t, o.SellerID, e.EvaluateeID)
	assert.Equal(t, o.ProductID, e.ProductID)
	assert.Equal(t, string(evaluation.StatusNormal), e.Status)

	// 5 星评价产生三个后置任务
	assert.Equal(t, []string{queue.KindCreditAdjust, queue.KindScoreInvalidate, queue.KindNotify}, dispatcher.kinds())
}

func TestSubmitNeutralScoreSkipsCreditTask(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &fakeDispatcher{}
	svc := newEvaluationService(db, dispatcher)

	o := seedOrder(t, db, order.StatusCompleted)

	_, err := svc.Submit(context.Background(), submitParams(o, 3))
	require.NoError(t, err)

	// 3 星不调整信用分
	assert.Equal(t, []string{queue.KindScoreInvalidate, queue.KindNotify}, dispatcher.kinds())
}

func TestSubmitDuplicate(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &fakeDispatcher{}
	svc := newEvaluationService(db, dispatcher)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusCompleted)

	_, err := svc.Submit(ctx, submitParams(o, 5))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, submitParams(o, 1))
	assert.True(t, errs.IsConflict(err))

	// 重复提交不追加任务
	assert.Len(t, dispatcher.tasks, 3)

	// 首次评价保持不变
	e, err := evaluationRepo(db).GetByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, e.Score)
}

func TestUniqueIndexBlocksConcurrentDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusCompleted)
	repo := evaluationRepo(db)

	require.NoError(t, repo.Create(ctx, &evaluation.Evaluation{
		OrderID: o.ID, UserID: o.BuyerID, EvaluateeID: o.SellerID,
		ProductID: o.ProductID, Score: 4, Status: string(evaluation.StatusNormal),
	}))

	// 并发竞态中晚到的插入由唯一索引关死
	err := repo.Create(ctx, &evaluation.Evaluation{
		OrderID: o.ID, UserID: o.BuyerID, EvaluateeID: o.SellerID,
		ProductID: o.ProductID, Score: 1, Status: string(evaluation.StatusNormal),
	})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestSubmitPermissionAndState(t *testing.T) {
	db := newTestDB(t)
	svc := newEvaluationService(db, &fakeDispatcher{})
	ctx := context.Background()

	completed := seedOrder(t, db, order.StatusCompleted)

	// 非买家不能评价
	params := submitParams(completed, 5)
	params.UserID = "seller-1"
	_, err := svc.Submit(ctx, params)
	assert.True(t, errs.IsPermission(err))

	// 未完成订单不能评价
	for _, s := range []order.Status{order.StatusPendingReceive, order.StatusCancelled, order.StatusRefunded} {
		o := seedOrder(t, db, s)
		_, err := svc.Submit(ctx, submitParams(o, 5))
		assert.True(t, errs.IsState(err), "status=%s", s)
	}
}

func TestSubmitUnknownUserAndOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newEvaluationService(db, &fakeDispatcher{})
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusCompleted)

	params := submitParams(o, 5)
	params.UserID = "ghost"
	_, err := svc.Submit(ctx, params)
	assert.True(t, errs.IsNotFound(err))

	params = submitParams(o, 5)
	params.OrderID = 999999
	_, err = svc.Submit(ctx, params)
	assert.True(t, errs.IsNotFound(err))
}

func TestSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newEvaluationService(db, &fakeDispatcher{})
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusCompleted)

	cases := []struct {
		name   string
		mutate func(*SubmitParams)
	}{
		{"评分为零", func(p *SubmitParams) { p.Score = 0 }},
		{"评分超界", func(p *SubmitParams) { p.Score = 6 }},
		{"内容为空", func(p *SubmitParams) { p.Content = "" }},
		{"内容全空白", func(p *SubmitParams) { p.Content = "   " }},
		{"内容超长", func(p *SubmitParams) { p.Content = strings.Repeat("好", evaluation.MaxContentLen+1) }},
		{"图片过多", func(p *SubmitParams) { p.Images = make([]string, evaluation.MaxImages+1) }},
		{"标签过多", func(p *SubmitParams) { p.Tags = make([]string, evaluation.MaxTags+1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := submitParams(o, 5)
			tc.mutate(params)
			_, err := svc.Submit(ctx, params)
			assert.True(t, errs.IsValidation(err))
		})
	}

	// 被拒的提交不落库
	exists, err := evaluationRepo(db).ExistsByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmitSucceedsWhenDispatchFails(t *testing.T) {
	db := newTestDB(t)
	dispatcher := &fakeDispatcher{pushErr: errors.New("queue down")}
	svc := newEvaluationService(db, dispatcher)
	ctx := context.Background()

	o := seedOrder(t, db, order.StatusCompleted)

	// 任务投递失败不影响评价主写
	e, err := svc.Submit(ctx, submitParams(o, 5))
	require.NoError(t, err)

	got, err := evaluationRepo(db).GetByOrderID(ctx, e.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Score)
}
