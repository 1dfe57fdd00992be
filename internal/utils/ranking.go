package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity        float64 // 时间重力 (1.5)
	WeightComment  float64 // 2.0
	WeightUpvote   float64 // 1.0
	WeightDownvote float64 // 1.5
	ScaleFactor    float64 // 放大系数 (100)
}

var DefaultConfig = RankConfig{
	Gravity:        1.5,
	WeightComment:  2.0,
	WeightUpvote:   1.0,
	WeightDownvote: 1.5,
	ScaleFactor:    100.0, // 让分数落在 0-100 区间，像"温度"
}

// CalculateScore returns the hot score of a post created at t.
func CalculateScore(t time.Time, up, down, comment int) float64 {
	return DefaultConfig.score(time.Since(t).Hours(), up, down, comment)
}

func (c RankConfig) score(hours float64, up, down, comment int) float64 {
	if hours < 0 {
		hours = 0
	}

	weightedSum := float64(up)*c.WeightUpvote +
		float64(comment)*c.WeightComment -
		float64(down)*c.WeightDownvote
	if weightedSum < 0 {
		weightedSum = 0 // 防止负数无法取对数
	}

	// log10(sum + 1) -> 确保 sum=0 时结果为 0
	numerator := math.Log10(weightedSum+1) * c.ScaleFactor

	// 时间衰减
	decay := math.Pow(hours+2, c.Gravity)

	return numerator / decay
}
