// Package rerank 提供排序之后的调整：Top-N 截断与按地区打散。
package rerank

import (
	"context"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pipeline"
)

// TopNNode 是 Top-N 截断节点，在排序之后截取前 N 个合作社。
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.HybridNode{...},   // 排序
//	        &rerank.TopNNode{},      // 按查询的 top_n 截断
//	    },
//	}
type TopNNode struct {
	// N 要保留的数量；N <= 0 时取查询的 TopN，查询也未设置时不截断。
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Prefs().TopN
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
