// Package filter 提供硬过滤：距离、有机、所需产品，以及可选的黑名单与规则表达式。
//
// 过滤只会收窄候选集，不改变候选的相对顺序。
package filter

import (
	"context"

	"github.com/rushteam/agrorec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Default 返回默认的过滤链：距离 → 有机 → 所需产品 → 排除列表 → 规则表达式。
func Default() []Filter {
	return []Filter{
		&DistanceFilter{},
		&OrganicFilter{},
		&ProductFilter{},
		&BlacklistFilter{},
		&ExprFilter{},
	}
}
