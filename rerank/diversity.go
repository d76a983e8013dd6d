package rerank

import (
	"context"

	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pipeline"
)

// Diversity 按地区打散：同一主地区（服务地区列表的第一个）最多 MaxPerRegion 个排在前面，
// 超出的候选按原顺序移到末尾，不会被丢弃。
// 需放在 rank 之后、topn 之前才能影响最终结果。
type Diversity struct {
	MaxPerRegion int // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.MaxPerRegion
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, len(items))
	head := make([]*core.Item, 0, len(items))
	var tail []*core.Item

	for _, it := range items {
		regions := it.Regions()
		if len(regions) == 0 {
			head = append(head, it)
			continue
		}
		region := catalog.RegionKey(regions[0])
		if seen[region] >= limit {
			tail = append(tail, it)
			continue
		}
		seen[region]++
		head = append(head, it)
	}
	return append(head, tail...), nil
}
