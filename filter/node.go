package filter

import (
	"context"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/pkg/logging"
	"github.com/rushteam/agrorec/pkg/utils"
)

// FilterNode 是过滤 Node，按顺序组合多个过滤器。
// 任一过滤器返回 true，该候选即被移除；保留的候选维持输入顺序。
//
// 过滤器返回错误时记录日志并视为“不过滤”，不中断流程；
// INVALID_INPUT 除外（规则本身有误），此时中止并返回该错误。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	log := logging.With("filter")
	out := make([]*core.Item, 0, len(items))
	removed := make(map[string]int, len(n.Filters))

	for _, item := range items {
		if item == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		filterReason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if core.IsInvalidInput(err) {
					return nil, err
				}
				log.Warn().Err(err).Str("filter", f.Name()).Int64("association_id", item.ID).Msg("filter error ignored")
				continue
			}
			if ok {
				filterReason = f.Name()
				break
			}
		}

		if filterReason != "" {
			removed[filterReason]++
			item.PutLabel("filtered", utils.NewLabel("true", filterReason))
			continue
		}
		out = append(out, item)
	}

	if len(removed) > 0 {
		ev := log.Debug().Int("in", len(items)).Int("out", len(out))
		for name, c := range removed {
			ev = ev.Int(name, c)
		}
		ev.Msg("candidates filtered")
	}
	return out, nil
}
