package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"market/app/models/evaluation"
	"market/app/models/score"
)

var seedOrderID uint64 = 1000

func seedEvaluations(t *testing.T, db *gorm.DB, sellerID string, productID uint64, scores []int) {
	t.Helper()
	for _, s := range scores {
		seedOrderID++
		require.NoError(t, db.Create(&evaluation.Evaluation{
			OrderID:     seedOrderID,
			UserID:      "buyer-1",
			EvaluateeID: sellerID,
			ProductID:   productID,
			Score:       s,
			Status:      string(evaluation.StatusNormal),
		}).Error)
	}
}

func TestSellerScoreComputes(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryStore()
	svc := NewScoreService(evaluationRepo(db), store)
	ctx := context.Background()

	// 1 星 x1、2 星 x1、3 星 x3、4 星 x5、5 星 x10
	scores := []int{1, 2, 3, 3, 3, 4, 4, 4, 4, 4, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}
	seedEvaluations(t, db, "seller-9", 1, scores)

	agg, err := svc.SellerScore(ctx, "seller-9")
	require.NoError(t, err)

	assert.Equal(t, score.SubjectSeller, agg.SubjectKind)
	assert.Equal(t, "seller-9", agg.SubjectID)
	assert.Equal(t, int64(20), agg.TotalCount)
	assert.Equal(t, 4.1, agg.AverageScore)
	assert.Equal(t, 75.0, agg.PositiveRate)
	assert.Equal(t, 10.0, agg.NegativeRate)
}

func TestSellerScoreCacheAside(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryStore()
	svc := NewScoreService(evaluationRepo(db), store)
	ctx := context.Background()

	seedEvaluations(t, db, "seller-9", 1, []int{5, 5})

	first, err := svc.SellerScore(ctx, "seller-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.TotalCount)

	// 写入新的评价后缓存未失效，读取仍是旧值
	seedEvaluations(t, db, "seller-9", 1, []int{1})

	cached, err := svc.SellerScore(ctx, "seller-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.TotalCount)

	// 失效后回源重算
	svc.InvalidateSeller("seller-9")

	fresh, err := svc.SellerScore(ctx, "seller-9")
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh.TotalCount)
}

func TestProductScore(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryStore()
	svc := NewScoreService(evaluationRepo(db), store)
	ctx := context.Background()

	seedEvaluations(t, db, "seller-9", 77, []int{4, 5, 5})
	seedEvaluations(t, db, "seller-9", 88, []int{1})

	agg, err := svc.ProductScore(ctx, 77)
	require.NoError(t, err)

	assert.Equal(t, score.SubjectProduct, agg.SubjectKind)
	assert.Equal(t, "77", agg.SubjectID)
	assert.Equal(t, int64(3), agg.TotalCount)
	assert.Equal(t, 4.7, agg.AverageScore)

	svc.InvalidateProduct(77)
	_, ok := store.Get(productCacheKey(77))
	assert.False(t, ok)
}

func TestScoreExcludesDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := NewScoreService(evaluationRepo(db), newMemoryStore())
	ctx := context.Background()

	seedEvaluations(t, db, "seller-9", 1, []int{5, 5})
	require.NoError(t, db.Create(&evaluation.Evaluation{
		OrderID:     2000,
		EvaluateeID: "seller-9",
		ProductID:   1,
		Score:       1,
		Status:      string(evaluation.StatusDeleted),
	}).Error)

	agg, err := svc.SellerScore(ctx, "seller-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), agg.TotalCount)
	assert.Equal(t, 5.0, agg.AverageScore)
}

func TestScoreNoEvaluations(t *testing.T) {
	db := newTestDB(t)
	svc := NewScoreService(evaluationRepo(db), newMemoryStore())

	agg, err := svc.SellerScore(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.TotalCount)
	assert.Equal(t, 0.0, agg.AverageScore)
}

func TestCorruptCacheFallsBack(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryStore()
	svc := NewScoreService(evaluationRepo(db), store)
	ctx := context.Background()

	seedEvaluations(t, db, "seller-9", 1, []int{4})
	store.Set(sellerCacheKey("seller-9"), "not-json", 0)

	agg, err := svc.SellerScore(ctx, "seller-9")
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.TotalCount)
}
