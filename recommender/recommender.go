// Package recommender 是推荐的对外入口：校验查询、运行 Pipeline，并把结果映射为 Recommendation。
//
//	snap, _ := recommender.FromTables(tables)
//	rec := recommender.New(snap)
//	results, err := rec.Recommend(ctx, q)
package recommender

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rushteam/agrorec/config"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/filter"
	"github.com/rushteam/agrorec/model"
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/pkg/dsl"
	"github.com/rushteam/agrorec/pkg/logging"
	"github.com/rushteam/agrorec/pkg/metrics"
	"github.com/rushteam/agrorec/rank"
	"github.com/rushteam/agrorec/recall"
	"github.com/rushteam/agrorec/rerank"
)

// SubScores 是五个子分数，均在 [0,1]。
type SubScores struct {
	Distance      float64 `json:"distance"`
	Rating        float64 `json:"rating"`
	Nutrition     float64 `json:"nutrition"`
	Regional      float64 `json:"regional"`
	Collaborative float64 `json:"collaborative"`
}

// Recommendation 是一条推荐结果。
type Recommendation struct {
	AssociationID   int64     `json:"association_id"`
	Name            string    `json:"name"`
	DistanceKm      float64   `json:"distance_km"`
	FinalScore      float64   `json:"final_score"`
	SubScores       SubScores `json:"sub_scores"`
	OfferedProducts []string  `json:"offered_products"`
	AvgRating       float64   `json:"avg_rating"`
	Organic         bool      `json:"organic"`
}

// Recommender 无跨调用状态，可并发调用 Recommend。
type Recommender struct {
	snap     *Snapshot
	pipeline *pipeline.Pipeline
	log      zerolog.Logger
}

type options struct {
	store        core.Store
	keyPrefix    string
	model        model.RankModel
	maxPerRegion int
	logger       *zerolog.Logger
}

// Option 配置默认 Pipeline。
type Option func(*options)

// WithStore 启用基于存储的排除列表过滤：
// 全局黑名单 {keyPrefix}:blacklist 与消费者屏蔽列表 {keyPrefix}:block:{consumerID}。
func WithStore(s core.Store, keyPrefix string) Option {
	return func(o *options) {
		o.store = s
		o.keyPrefix = keyPrefix
	}
}

// WithModel 使用固定的排序模型替代按查询权重构造的 LinearModel。
func WithModel(m model.RankModel) Option {
	return func(o *options) { o.model = m }
}

// WithDiversity 在截断前按主地区打散，每个地区最多 maxPerRegion 个排在前面。
func WithDiversity(maxPerRegion int) Option {
	return func(o *options) { o.maxPerRegion = maxPerRegion }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// New 使用默认 Pipeline 构建：recall.catalog → filter → rank.hybrid → [rerank.diversity] → rerank.topn。
func New(snap *Snapshot, opts ...Option) *Recommender {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	filters := filter.Default()
	if o.store != nil {
		if o.keyPrefix == "" {
			o.keyPrefix = "agrorec"
		}
		adapter := filter.NewStoreAdapter(o.store)
		filters = append(filters,
			filter.NewBlacklistFilter(nil, adapter, o.keyPrefix+":blacklist"),
			filter.NewUserBlockFilter(adapter, o.keyPrefix+":block"),
		)
	}
	nodes := []pipeline.Node{
		&recall.CatalogRecall{Catalog: snap.Catalog},
		&filter.FilterNode{Filters: filters},
		&rank.HybridNode{Catalog: snap.Catalog, CF: snap.CF, Model: o.model},
	}
	if o.maxPerRegion > 0 {
		nodes = append(nodes, &rerank.Diversity{MaxPerRegion: o.maxPerRegion})
	}
	nodes = append(nodes, &rerank.TopNNode{})

	r := &Recommender{snap: snap, log: logging.With("recommender")}
	if o.logger != nil {
		r.log = *o.logger
	}
	r.pipeline = &pipeline.Pipeline{Nodes: nodes, Logger: &r.log}
	return r
}

// NewFromPipelineConfig 按 Pipeline 配置构建，Node 类型须已通过 config.Register 注册
// （import _ "github.com/rushteam/agrorec/config/builders"）。
func NewFromPipelineConfig(snap *Snapshot, cfg *pipeline.Config, s core.Store) (*Recommender, error) {
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	factory := config.DefaultFactory(config.Deps{Catalog: snap.Catalog, CF: snap.CF, Store: s})
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		return nil, err
	}
	r := &Recommender{snap: snap, pipeline: p, log: logging.With("recommender")}
	p.Logger = &r.log
	return r, nil
}

// Snapshot 返回推荐使用的数据快照。
func (r *Recommender) Snapshot() *Snapshot {
	return r.snap
}

// Recommend 返回按最终分数降序的推荐列表。
// 查询非法返回 INVALID_INPUT；硬过滤后没有候选时返回空切片（非 nil）且不是错误。
func (r *Recommender) Recommend(ctx context.Context, q core.Query) ([]Recommendation, error) {
	if err := q.Validate(); err != nil {
		metrics.RecordRecommendation(metrics.OutcomeInvalid, 0)
		return nil, err
	}
	q.Preferences.DesiredProducts = r.canonicalDesired(q.Preferences.DesiredProducts)

	rctx := core.NewRecommendContext(q)
	// 规则在进入 Pipeline 前编译一次，编译结果随 rctx 供 ExprFilter 复用。
	if _, err := dsl.QueryRule(rctx); err != nil {
		metrics.RecordRecommendation(metrics.OutcomeInvalid, 0)
		return nil, core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput,
			fmt.Sprintf("query: invalid rule: %v", err))
	}
	items, err := r.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		if core.IsInvalidInput(err) {
			metrics.RecordRecommendation(metrics.OutcomeInvalid, 0)
		} else {
			metrics.RecordRecommendation(metrics.OutcomeError, 0)
		}
		return nil, err
	}

	out := make([]Recommendation, 0, len(items))
	if len(items) == 0 {
		r.log.Info().Str("consumer_id", q.ConsumerID).Msg("no candidates after hard filters")
		metrics.RecordRecommendation(metrics.OutcomeEmpty, 0)
		return out, nil
	}
	for _, it := range items {
		out = append(out, toRecommendation(it))
	}
	_, coldStart := rctx.GetLabel("cold_start")
	r.log.Debug().
		Str("consumer_id", q.ConsumerID).
		Bool("cold_start", coldStart).
		Int("results", len(out)).
		Msg("recommendations ready")
	metrics.RecordRecommendation(metrics.OutcomeOK, len(out))
	return out, nil
}

// canonicalDesired 规范化期望产品；词表外的名称原样保留（去空白），
// 它们不会匹配任何合作社，但列表非空时产品过滤依然生效。
func (r *Recommender) canonicalDesired(raws []string) []string {
	vocab := r.snap.Catalog.Vocabulary()
	out := make([]string, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	var unmapped []string
	for _, raw := range raws {
		name, ok := vocab.Canonicalize(raw)
		if !ok {
			name = strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			unmapped = append(unmapped, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(unmapped) > 0 {
		r.log.Debug().Strs("products", unmapped).Msg("desired products outside vocabulary")
	}
	return out
}

func toRecommendation(it *core.Item) Recommendation {
	return Recommendation{
		AssociationID: it.ID,
		Name:          it.Name(),
		DistanceKm:    it.DistanceKm(),
		FinalScore:    it.Score,
		SubScores: SubScores{
			Distance:      it.Features[core.FeatureDistance],
			Rating:        it.Features[core.FeatureRating],
			Nutrition:     it.Features[core.FeatureNutrition],
			Regional:      it.Features[core.FeatureRegional],
			Collaborative: it.Features[core.FeatureCollaborative],
		},
		OfferedProducts: append([]string(nil), it.Products()...),
		AvgRating:       it.AvgRating(),
		Organic:         it.Organic(),
	}
}
