// Package score 评分聚合
//
// 聚合不是记录实体，按需从评价表重算，可缓存。
package score

import "math"

// 聚合主体类型
const (
	SubjectSeller  = "seller"
	SubjectProduct = "product"
)

// Aggregate 评分聚合结果
type Aggregate struct {
	SubjectKind  string   `json:"subject_kind"`
	SubjectID    string   `json:"subject_id"`
	AverageScore float64  `json:"average_score"`
	TotalCount   int64    `json:"total_count"`
	PositiveRate float64  `json:"positive_rate"` // 好评率（4-5 星），百分比
	NegativeRate float64  `json:"negative_rate"` // 差评率（1-2 星），百分比
	StarCounts   [5]int64 `json:"star_counts"`   // 下标 0 对应 1 星
}

// Compute 由各星级数量计算聚合
// 无评价时平均分和好差评率均为 0。
func Compute(subjectKind, subjectID string, counts [5]int64) *Aggregate {
	agg := &Aggregate{
		SubjectKind: subjectKind,
		SubjectID:   subjectID,
		StarCounts:  counts,
	}

	var total, weighted int64
	for i, c := range counts {
		total += c
		weighted += int64(i+1) * c
	}
	agg.TotalCount = total

	if total == 0 {
		return agg
	}

	agg.AverageScore = round1(float64(weighted) / float64(total))
	agg.PositiveRate = round1(float64(counts[3]+counts[4]) / float64(total) * 100)
	agg.NegativeRate = round1(float64(counts[0]+counts[1]) / float64(total) * 100)
	return agg
}

// round1 保留一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
