package filter

import (
	"context"

	"github.com/rushteam/agrorec/core"
)

// OrganicFilter 在查询要求只看有机时移除非有机合作社。
type OrganicFilter struct {
	// Always 为 true 时无论查询如何都只保留有机合作社。
	Always bool
}

func (f *OrganicFilter) Name() string {
	return "filter.organic"
}

func (f *OrganicFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if !f.Always && (rctx == nil || !rctx.Prefs().OrganicOnly) {
		return false, nil
	}
	return !item.Organic(), nil
}
