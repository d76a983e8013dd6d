// Package builders 在 init 中注册内置 Node 的配置构建器。
package builders

import (
	"fmt"

	"github.com/rushteam/agrorec/config"
	"github.com/rushteam/agrorec/filter"
	"github.com/rushteam/agrorec/model"
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/pkg/conv"
	"github.com/rushteam/agrorec/pkg/dsl"
	"github.com/rushteam/agrorec/rank"
	"github.com/rushteam/agrorec/recall"
	"github.com/rushteam/agrorec/rerank"
)

func init() {
	config.Register("recall.catalog", BuildCatalogRecallNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.hybrid", BuildHybridNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func BuildCatalogRecallNode(_ map[string]any, deps config.Deps) (pipeline.Node, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("recall.catalog requires a catalog")
	}
	return &recall.CatalogRecall{Catalog: deps.Catalog}, nil
}

// BuildFilterNode 按配置顺序组合过滤器；未配置 filters 时使用 filter.Default()。
//
// 元素可以是类型名字符串，也可以是带参数的 map：
//
//	filters:
//	  - products
//	  - type: distance        # max_km 可选
//	  - type: organic         # always 可选
//	  - type: products
//	  - type: blacklist       # ids / key 可选
//	  - type: user_block      # key_prefix 可选
//	  - type: expr            # expr 可选，为空时取查询中的 rule
func BuildFilterNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	specs := filterSpecs(cfg)
	if len(specs) == 0 {
		return &filter.FilterNode{Filters: filter.Default()}, nil
	}
	var adapter *filter.StoreAdapter
	if deps.Store != nil {
		adapter = filter.NewStoreAdapter(deps.Store)
	}
	filters := make([]filter.Filter, 0, len(specs))
	for _, fc := range specs {
		filterType := conv.ConfigGet(fc, "type", "")
		switch filterType {
		case "distance":
			filters = append(filters, &filter.DistanceFilter{MaxKm: conv.ConfigGetFloat64(fc, "max_km", 0)})
		case "organic":
			filters = append(filters, &filter.OrganicFilter{Always: conv.ConfigGet(fc, "always", false)})
		case "products":
			filters = append(filters, &filter.ProductFilter{})
		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(conv.ConfigGetInt64Slice(fc, "ids"), adapter, conv.ConfigGet(fc, "key", "")))
		case "user_block":
			filters = append(filters, filter.NewUserBlockFilter(adapter, conv.ConfigGet(fc, "key_prefix", "")))
		case "expr":
			expr := conv.ConfigGet(fc, "expr", "")
			if err := dsl.Validate(expr); err != nil {
				return nil, fmt.Errorf("filter expr %q: %w", expr, err)
			}
			filters = append(filters, &filter.ExprFilter{Expr: expr})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildHybridNode 构建混合排序；配置 model_path 时从文件加载固定权重的 LinearModel，
// 否则每次查询按查询权重打分。
func BuildHybridNode(cfg map[string]any, deps config.Deps) (pipeline.Node, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("rank.hybrid requires a catalog")
	}
	n := &rank.HybridNode{Catalog: deps.Catalog, CF: deps.CF}
	if path := conv.ConfigGet(cfg, "model_path", ""); path != "" {
		m, err := model.LoadLinearModel(path)
		if err != nil {
			return nil, err
		}
		n.Model = m
	}
	return n, nil
}

func BuildTopNNode(cfg map[string]any, _ config.Deps) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildDiversityNode(cfg map[string]any, _ config.Deps) (pipeline.Node, error) {
	return &rerank.Diversity{MaxPerRegion: int(conv.ConfigGetInt64(cfg, "max_per_region", 1))}, nil
}

func filterSpecs(cfg map[string]any) []map[string]any {
	raw, ok := cfg["filters"].([]any)
	if !ok {
		return nil
	}
	return conv.ConvertSlice(raw, func(v any) (map[string]any, bool) {
		switch x := v.(type) {
		case string:
			return map[string]any{"type": x}, true
		case map[string]any:
			return x, true
		}
		return nil, false
	})
}
