package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/logging"
	"github.com/rushteam/agrorec/pkg/metrics"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：
//
//	recall.catalog → filter → rank.hybrid → rerank.topn
type Pipeline struct {
	Nodes []Node

	// Logger 为空时使用 logging.With("pipeline")。
	Logger *zerolog.Logger
}

func (p *Pipeline) logger() zerolog.Logger {
	if p.Logger != nil {
		return *p.Logger
	}
	return logging.With("pipeline")
}

// Run 依次执行各 Node；每个 Node 执行前检查 ctx，任一 Node 出错即中止。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	log := p.logger()
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in := len(cur)
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		metrics.ObserveNode(node.Name(), string(node.Kind()), elapsed, err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		log.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", in).
			Int("out", len(next)).
			Dur("elapsed", elapsed).
			Msg("node done")
		cur = next
	}
	return cur, nil
}
