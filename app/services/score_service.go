package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"market/app/models/score"
	"market/app/repositories"
	"market/pkg/cache"
	"market/pkg/errs"
	"market/pkg/logger"
)

// ScoreCacheTTL 聚合缓存过期时间
const ScoreCacheTTL = 10 * time.Minute

// ScoreService 评分聚合，读走缓存，评价变更时按 key 精确失效
type ScoreService struct {
	evaluations *repositories.EvaluationRepository
	store       cache.Store
}

// NewScoreService 创建评分服务
func NewScoreService(evaluations *repositories.EvaluationRepository, store cache.Store) *ScoreService {
	return &ScoreService{
		evaluations: evaluations,
		store:       store,
	}
}

// SellerScore 卖家评分聚合
func (s *ScoreService) SellerScore(ctx context.Context, sellerID string) (*score.Aggregate, error) {
	return s.load(ctx, sellerCacheKey(sellerID), score.SubjectSeller, sellerID, func() ([5]int64, error) {
		return s.evaluations.StarCountsBySeller(ctx, sellerID)
	})
}

// ProductScore 商品评分聚合
func (s *ScoreService) ProductScore(ctx context.Context, productID uint64) (*score.Aggregate, error) {
	subjectID := strconv.FormatUint(productID, 10)
	return s.load(ctx, productCacheKey(productID), score.SubjectProduct, subjectID, func() ([5]int64, error) {
		return s.evaluations.StarCountsByProduct(ctx, productID)
	})
}

// InvalidateSeller 删除卖家聚合缓存
func (s *ScoreService) InvalidateSeller(sellerID string) {
	s.store.Forget(sellerCacheKey(sellerID))
}

// InvalidateProduct 删除商品聚合缓存
func (s *ScoreService) InvalidateProduct(productID uint64) {
	s.store.Forget(productCacheKey(productID))
}

// load cache-aside 读取：命中直接反序列化，未命中回源重算后写缓存
func (s *ScoreService) load(ctx context.Context, key, subjectKind, subjectID string, source func() ([5]int64, error)) (*score.Aggregate, error) {
	if cached, ok := s.store.Get(key); ok {
		var agg score.Aggregate
		if err := json.Unmarshal([]byte(cached), &agg); err == nil {
			return &agg, nil
		}
		// 缓存内容损坏则当作未命中回源
		logger.WarnString("评分", "缓存", "聚合缓存反序列化失败，回源重算: "+key)
	}

	counts, err := source()
	if err != nil {
		return nil, errs.NewSystem("统计评价失败", err)
	}
	agg := score.Compute(subjectKind, subjectID, counts)

	if body, err := json.Marshal(agg); err == nil {
		s.store.Set(key, string(body), ScoreCacheTTL)
	}
	return agg, nil
}

func sellerCacheKey(sellerID string) string {
	return "score:seller:" + sellerID
}

func productCacheKey(productID uint64) string {
	return fmt.Sprintf("score:product:%d", productID)
}
