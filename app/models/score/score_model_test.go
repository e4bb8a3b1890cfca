package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeEmpty(t *testing.T) {
	agg := Compute(SubjectSeller, "s1", [5]int64{})

	assert.Equal(t, int64(0), agg.TotalCount)
	assert.Equal(t, 0.0, agg.AverageScore)
	assert.Equal(t, 0.0, agg.PositiveRate)
	assert.Equal(t, 0.0, agg.NegativeRate)
}

func TestComputeMixedScores(t *testing.T) {
	// 1 星 x1、2 星 x1、3 星 x3、4 星 x5、5 星 x10，共 20 条
	counts := [5]int64{1, 1, 3, 5, 10}
	agg := Compute(SubjectSeller, "s1", counts)

	assert.Equal(t, int64(20), agg.TotalCount)
	assert.Equal(t, 4.1, agg.AverageScore)
	assert.Equal(t, 75.0, agg.PositiveRate)
	assert.Equal(t, 10.0, agg.NegativeRate)
	assert.Equal(t, counts, agg.StarCounts)
}

func TestComputeAllFiveStars(t *testing.T) {
	agg := Compute(SubjectProduct, "42", [5]int64{0, 0, 0, 0, 7})

	assert.Equal(t, 5.0, agg.AverageScore)
	assert.Equal(t, 100.0, agg.PositiveRate)
	assert.Equal(t, 0.0, agg.NegativeRate)
}

func TestComputeRounding(t *testing.T) {
	// (1+5+5)/3 = 3.666... -> 3.7
	agg := Compute(SubjectSeller, "s2", [5]int64{1, 0, 0, 0, 2})

	assert.Equal(t, 3.7, agg.AverageScore)
	// 2/3 -> 66.666...% -> 66.7
	assert.Equal(t, 66.7, agg.PositiveRate)
	// 1/3 -> 33.333...% -> 33.3
	assert.Equal(t, 33.3, agg.NegativeRate)
}
