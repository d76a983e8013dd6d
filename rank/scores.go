package rank

import (
	"math"

	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/core"
)

// 本文件中的子分数函数都是纯函数，输出均在 [0,1]，可脱离 Pipeline 单独测试。

// DistanceScores 在候选集内做 min-max 反向归一化：最近为 1，最远为 0；
// 所有距离相等（含只有一个候选）时均为 1。非有限距离得 0，且不参与 min/max。
func DistanceScores(distancesKm []float64) []float64 {
	out := make([]float64, len(distancesKm))
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, d := range distancesKm {
		if math.IsInf(d, 0) || math.IsNaN(d) {
			continue
		}
		minD = math.Min(minD, d)
		maxD = math.Max(maxD, d)
	}
	for i, d := range distancesKm {
		switch {
		case math.IsInf(d, 0) || math.IsNaN(d):
			out[i] = 0
		case maxD > minD:
			out[i] = 1 - (d-minD)/(maxD-minD)
		default:
			out[i] = 1
		}
	}
	return out
}

// RatingScore 将 0–5 的平均评分映射到 [0,1]。
func RatingScore(avg float64) float64 {
	return clamp01(avg / core.MaxRating)
}

// NutritionScore 是 offered ∩ desired 中有营养记录的产品在目标分数上的平均值。
// 目标为空、desired 为空或交集中没有营养记录时为 0。
func NutritionScore(offered, desired []string, obj core.NutritionObjective, table *catalog.NutrientTable) float64 {
	if obj == core.ObjectiveNone || len(desired) == 0 || table == nil {
		return 0
	}
	want := toSet(desired)
	var sum float64
	n := 0
	for _, p := range offered {
		if _, ok := want[p]; !ok {
			continue
		}
		if s, ok := table.Score(p, obj); ok {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// RegionalScore 衡量合作社所在地区对所需产品的产量占比。
// 对每个 offered ∩ desired 的产品，取服务地区中的最大占比（无记录为 0），
// 在全部相关产品上取平均（0 也计入），最后除以 100。
func RegionalScore(offered, regions, desired []string, idx *catalog.ProductionIndex) float64 {
	if len(desired) == 0 || idx == nil {
		return 0
	}
	want := toSet(desired)
	var sum float64
	n := 0
	for _, p := range offered {
		if _, ok := want[p]; !ok {
			continue
		}
		best := 0.0
		for _, r := range regions {
			if share, ok := idx.Share(r, p); ok && share > best {
				best = share
			}
		}
		sum += best / 100
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp01(sum / float64(n))
}

// NormalizeByMax 原地将分数除以最大值；最大值 <= 0 时保持不变（全为 0）。
func NormalizeByMax(scores []float64) {
	maxS := 0.0
	for _, s := range scores {
		if s > maxS {
			maxS = s
		}
	}
	if maxS <= 0 {
		return
	}
	for i := range scores {
		scores[i] /= maxS
	}
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
