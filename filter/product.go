package filter

import (
	"context"

	"github.com/rushteam/agrorec/core"
)

// ProductFilter 移除不提供任何所需产品的候选；所需产品为空时不过滤。
// 所需产品应已经过词表规范化。
type ProductFilter struct{}

func (f *ProductFilter) Name() string {
	return "filter.products"
}

func (f *ProductFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil {
		return false, nil
	}
	desired := rctx.Prefs().DesiredProducts
	if len(desired) == 0 {
		return false, nil
	}
	for _, offered := range item.Products() {
		for _, d := range desired {
			if offered == d {
				return false, nil
			}
		}
	}
	return true, nil
}
