package filter

import (
	"context"

	"github.com/rushteam/agrorec/core"
)

// DistanceFilter 移除距离超过上限的候选（保留 distance <= max）。
// 坐标缺失的候选距离为 +Inf，总是被移除。
type DistanceFilter struct {
	// MaxKm > 0 时覆盖查询中的 MaxDistanceKm。
	MaxKm float64
}

func (f *DistanceFilter) Name() string {
	return "filter.distance"
}

func (f *DistanceFilter) limit(rctx *core.RecommendContext) float64 {
	if f.MaxKm > 0 {
		return f.MaxKm
	}
	if rctx != nil && rctx.Prefs().MaxDistanceKm > 0 {
		return rctx.Prefs().MaxDistanceKm
	}
	return core.DefaultMaxDistanceKm
}

func (f *DistanceFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	return !(item.DistanceKm() <= f.limit(rctx)), nil
}
