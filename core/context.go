package core

import "github.com/rushteam/agrorec/pkg/utils"

// RecommendContext 承载一次查询（消费者、位置、偏好），贯穿整个 Pipeline 透传。
// Pipeline 中各 Node 只读 Query；RecommendContext 不跨请求复用。
type RecommendContext struct {
	UserID string
	Query  Query

	// Labels 是请求级标签，可用于解释与观测（例如 "cold_start"）。
	Labels map[string]utils.Label

	// Params 请求级附加参数，供自定义 Node 使用。
	Params map[string]any
}

// NewRecommendContext 由查询构造上下文。
func NewRecommendContext(q Query) *RecommendContext {
	return &RecommendContext{
		UserID: q.ConsumerID,
		Query:  q,
		Labels: make(map[string]utils.Label),
		Params: make(map[string]any),
	}
}

// Prefs 返回查询偏好。
func (rctx *RecommendContext) Prefs() Preferences {
	return rctx.Query.Preferences
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	rctx.Labels[key] = utils.MergeLabel(rctx.Labels[key], lbl)
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
