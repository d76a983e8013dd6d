package filter

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/store"
)

func item(id int64, distKm float64, organic bool, products ...string) *core.Item {
	it := core.NewItem(id)
	it.Meta[core.MetaDistanceKm] = distKm
	it.Meta[core.MetaOrganic] = organic
	it.Meta[core.MetaProducts] = products
	it.Meta[core.MetaAvgRating] = float64(id)
	return it
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func rctxWith(mod func(p *core.Preferences)) *core.RecommendContext {
	q := core.NewQuery("c1", -15.8, -47.9)
	if mod != nil {
		mod(&q.Preferences)
	}
	return core.NewRecommendContext(q)
}

func TestFilterNode_Default(t *testing.T) {
	tests := []struct {
		name string
		mod  func(p *core.Preferences)
		want []int64
	}{
		{
			name: "distance only, boundary kept",
			mod:  nil,
			want: []int64{1, 2, 3, 4},
		},
		{
			name: "tighter distance",
			mod:  func(p *core.Preferences) { p.MaxDistanceKm = 10 },
			want: []int64{1, 2, 4},
		},
		{
			name: "organic only",
			mod:  func(p *core.Preferences) { p.OrganicOnly = true },
			want: []int64{1, 3},
		},
		{
			name: "desired products",
			mod:  func(p *core.Preferences) { p.DesiredProducts = []string{"Tomate", "Banana"} },
			want: []int64{1, 4},
		},
		{
			name: "exclude ids",
			mod:  func(p *core.Preferences) { p.ExcludeIDs = []int64{2, 3} },
			want: []int64{1, 4},
		},
		{
			name: "rule",
			mod:  func(p *core.Preferences) { p.Rule = `item.avg_rating >= 3.0` },
			want: []int64{3, 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []*core.Item{
				item(1, 0, true, "Tomate"),
				item(2, 5, false, "Alface"),
				item(3, 30, true, "Alface"),
				item(4, 9.99, false, "Banana", "Alface"),
				item(5, 50, true, "Tomate"),
				item(6, math.Inf(1), true, "Tomate"),
			}
			out, err := (&FilterNode{Filters: Default()}).Process(context.Background(), rctxWith(tt.mod), items)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(out))

			lbl, ok := items[4].Labels["filtered"]
			require.True(t, ok, "50 km candidate must be labelled")
			assert.Equal(t, "filter.distance", lbl.Source)
		})
	}
}

type failingFilter struct{}

func (failingFilter) Name() string { return "filter.failing" }
func (failingFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("backend down")
}

func TestFilterNode_ErrorKeepsItem(t *testing.T) {
	items := []*core.Item{item(1, 0, true)}
	out, err := (&FilterNode{Filters: []Filter{failingFilter{}}}).Process(context.Background(), rctxWith(nil), items)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDistanceFilter_Override(t *testing.T) {
	f := &DistanceFilter{MaxKm: 1}
	drop, _ := f.ShouldFilter(context.Background(), rctxWith(nil), item(1, 2, false))
	assert.True(t, drop)
	drop, _ = f.ShouldFilter(context.Background(), rctxWith(nil), item(1, 1, false))
	assert.False(t, drop)
}

func TestOrganicFilter_Always(t *testing.T) {
	f := &OrganicFilter{Always: true}
	drop, _ := f.ShouldFilter(context.Background(), rctxWith(nil), item(1, 0, false))
	assert.True(t, drop)
}

func TestBlacklistAndUserBlock_FromStore(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	adapter := NewStoreAdapter(ms)
	require.NoError(t, adapter.SetBlacklist(ctx, "agrorec:blacklist", []int64{2}))
	require.NoError(t, adapter.SetBlacklist(ctx, "agrorec:block:c1", []int64{3}))

	node := &FilterNode{Filters: []Filter{
		NewBlacklistFilter([]int64{4}, adapter, "agrorec:blacklist"),
		NewUserBlockFilter(adapter, "agrorec:block"),
	}}
	items := []*core.Item{item(1, 0, true), item(2, 0, true), item(3, 0, true), item(4, 0, true)}
	out, err := node.Process(ctx, rctxWith(nil), items)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(out))

	// 其他消费者没有屏蔽列表
	other := core.NewRecommendContext(core.NewQuery("c2", 0, 0))
	out, err = node.Process(ctx, other, []*core.Item{item(3, 0, true)})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(out))
}

func TestExprFilter_StaticExpr(t *testing.T) {
	f := &ExprFilter{Expr: `"Tomate" in item.products`}
	drop, err := f.ShouldFilter(context.Background(), rctxWith(nil), item(1, 0, false, "Alface"))
	require.NoError(t, err)
	assert.True(t, drop)

	_, err = (&ExprFilter{Expr: `item.`}).ShouldFilter(context.Background(), rctxWith(nil), item(1, 0, false))
	assert.True(t, core.IsInvalidInput(err))
}

func TestFilterNode_BrokenQueryRuleAborts(t *testing.T) {
	rctx := rctxWith(func(p *core.Preferences) { p.Rule = `item.avg_ratting >= 4.5` })
	node := &FilterNode{Filters: []Filter{&ExprFilter{}}}

	out, err := node.Process(context.Background(), rctx, []*core.Item{item(1, 0, false), item(2, 0, false)})
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
	assert.Nil(t, out)

	rctx = rctxWith(func(p *core.Preferences) { p.Rule = `item.avg_rating >= 2.0` })
	out, err = node.Process(context.Background(), rctx, []*core.Item{item(1, 0, false), item(2, 0, false)})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(out))
}
