// Package dsl 提供基于 CEL (Common Expression Language) 的候选规则表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/agrorec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("query", cel.DynType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Compile 编译表达式；表达式必须返回 bool。
// 不做进程级缓存：需要复用时持有 Compile 返回的 Rule。
func Compile(expr string) (*Rule, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); t != cel.BoolType && t != cel.DynType {
		return nil, fmt.Errorf("expression must return bool, got %s", t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Rule{Expr: expr, prg: prg}, nil
}

// Rule 是编译后的表达式，可被多个候选复用，并发安全。
type Rule struct {
	Expr string
	prg  cel.Program
}

// Eval 对一个候选执行规则。
func (r *Rule) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if r == nil {
		return true, nil
	}
	out, _, err := r.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// ParamQueryRule 是 RecommendContext.Params 中已编译查询规则的 key。
const ParamQueryRule = "dsl.query_rule"

// QueryRule 返回查询 Rule 的编译结果：一次请求只编译一次，结果存于 rctx.Params。
// 查询没有 Rule 时返回 nil。
func QueryRule(rctx *core.RecommendContext) (*Rule, error) {
	if rctx == nil || rctx.Prefs().Rule == "" {
		return nil, nil
	}
	expr := rctx.Prefs().Rule
	if r, ok := rctx.Params[ParamQueryRule].(*Rule); ok && r.Expr == expr {
		return r, nil
	}
	r, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	if rctx.Params == nil {
		rctx.Params = make(map[string]any)
	}
	rctx.Params[ParamQueryRule] = r
	return r, nil
}

// Validate 检查表达式能否编译；空表达式合法。
func Validate(expr string) error {
	if expr == "" {
		return nil
	}
	_, err := Compile(expr)
	return err
}

// Eval 是候选规则解释器。
//
// 可用变量：
//   - item：id / name / distance_km / products / regions / organic / avg_rating / score / features
//   - label：item 的 Label 值，如 label.recall_source
//   - query：consumer_id / desired_products / max_distance_km / organic_only / nutrition_objective
//
// 示例：
//   - `"Tomate" in item.products`
//   - `item.avg_rating >= 4.0 && item.distance_km < 10.0`
//   - `item.regions.exists(r, r == "Brazlândia")`
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

// NewEval 创建一个解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 编译并执行表达式，返回布尔结果；空表达式返回 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	r, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return r.Eval(e.item, e.rctx)
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = v.Value
	}

	item := map[string]any{
		"id":          it.ID,
		"name":        it.Name(),
		"distance_km": it.DistanceKm(),
		"products":    nonNil(it.Products()),
		"regions":     nonNil(it.Regions()),
		"organic":     it.Organic(),
		"avg_rating":  it.AvgRating(),
		"score":       it.Score,
		"features":    it.Features,
	}

	query := map[string]any{}
	if rctx != nil {
		p := rctx.Prefs()
		query = map[string]any{
			"consumer_id":         rctx.UserID,
			"desired_products":    nonNil(p.DesiredProducts),
			"max_distance_km":     p.MaxDistanceKm,
			"organic_only":        p.OrganicOnly,
			"nutrition_objective": string(p.NutritionObjective),
		}
	}

	return map[string]any{
		"item":  item,
		"label": labels,
		"query": query,
	}
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
