package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤：表达式为 false 的候选被移除。
// Expr 为空时使用查询中的 Rule；两者都为空时不过滤。
//
// 表达式编译或执行失败（如字段名拼错）返回 INVALID_INPUT，FilterNode 会中止本次查询。
type ExprFilter struct {
	Expr string

	once sync.Once
	rule *dsl.Rule
	err  error
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	rule, module, err := f.resolve(rctx)
	if err != nil {
		return false, invalidRule(module, err)
	}
	if rule == nil {
		return false, nil
	}
	ok, err := rule.Eval(item, rctx)
	if err != nil {
		return false, invalidRule(module, err)
	}
	return !ok, nil
}

// resolve 返回生效的规则：节点配置的 Expr 只编译一次，查询 Rule 每个请求编译一次。
func (f *ExprFilter) resolve(rctx *core.RecommendContext) (*dsl.Rule, string, error) {
	if f.Expr != "" {
		f.once.Do(func() { f.rule, f.err = dsl.Compile(f.Expr) })
		return f.rule, core.ModuleFilter, f.err
	}
	rule, err := dsl.QueryRule(rctx)
	return rule, core.ModuleQuery, err
}

func invalidRule(module string, err error) error {
	return core.NewDomainError(module, core.ErrorCodeInvalidInput, fmt.Sprintf("%s: invalid rule: %v", module, err))
}
