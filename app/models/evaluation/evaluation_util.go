package evaluation

// Status 评价自身的生命周期状态
type Status string

const (
	StatusDraft   Status = "draft"   // 草稿
	StatusPending Status = "pending" // 待审核
	StatusNormal  Status = "normal"  // 正常展示
	StatusHidden  Status = "hidden"  // 用户隐藏
	StatusBlocked Status = "blocked" // 审核屏蔽
	StatusDeleted Status = "deleted" // 已删除
)

// 校验边界
const (
	MinScore      = 1
	MaxScore      = 5
	MaxContentLen = 500
	MaxImages     = 9
	MaxTags       = 10
)

// CreditDelta 评价分值对应的信用分变化
// 4-5 星 +5 分；1-2 星 -10 分；3 星不变。
func CreditDelta(score int) int {
	switch {
	case score >= 4:
		return 5
	case score <= 2:
		return -10
	default:
		return 0
	}
}

// Positive 是否好评（4-5 星）
func Positive(score int) bool {
	return score >= 4
}

// Negative 是否差评（1-2 星）
func Negative(score int) bool {
	return score <= 2
}

// Visible 聚合统计是否计入该评价
func (e *Evaluation) Visible() bool {
	return Status(e.Status) != StatusDeleted
}
