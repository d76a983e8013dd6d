// Package config 提供两类配置：
//   - 应用配置 AppConfig（koanf：默认值 → YAML 文件 → AGROREC_* 环境变量）
//   - Pipeline 的 Node 注册表（配置驱动构建 Pipeline）
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/recall"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/agrorec/config/builders"
// 以触发内置 Node（recall.catalog、filter、rank.hybrid、rerank.topn 等）的 init 注册。

// Deps 是构建 Node 时可注入的运行时依赖（来自已加载的快照）。
type Deps struct {
	Catalog *catalog.Catalog
	CF      *recall.ItemBasedCF

	// Store 可选，供黑名单/屏蔽列表过滤器读取。
	Store core.Store
}

// NodeBuilder 根据 Node 配置与运行时依赖构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type NodeBuilder func(cfg map[string]any, deps Deps) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑。
// 建议在各组件的 init 中调用，例如：func init() { config.Register("rank.hybrid", BuildHybridNode) }
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回绑定了 deps 的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		b := builder
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return b(cfg, deps)
		})
	}
	return f
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for _, nc := range cfg.Pipeline.Nodes {
		if _, ok := defaultBuilders[nc.Type]; !ok {
			types := make([]string, 0, len(defaultBuilders))
			for t := range defaultBuilders {
				types = append(types, t)
			}
			sort.Strings(types)
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, types)
		}
	}
	return nil
}
