package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/utils"
)

func testItem() *core.Item {
	it := core.NewItem(7)
	it.Meta[core.MetaName] = "AFECA"
	it.Meta[core.MetaDistanceKm] = 4.2
	it.Meta[core.MetaProducts] = []string{"Tomate", "Alface"}
	it.Meta[core.MetaRegions] = []string{"Brazlândia"}
	it.Meta[core.MetaOrganic] = true
	it.Meta[core.MetaAvgRating] = 4.5
	it.PutLabel("recall_source", utils.NewLabel("catalog", "recall"))
	return it
}

func TestEval_Evaluate(t *testing.T) {
	q := core.NewQuery("c1", -15.8, -47.9)
	q.Preferences.DesiredProducts = []string{"Tomate"}
	rctx := core.NewRecommendContext(q)

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{`"Tomate" in item.products`, true},
		{`"Banana" in item.products`, false},
		{`item.avg_rating >= 4.0 && item.distance_km < 10.0`, true},
		{`item.organic`, true},
		{`item.regions.exists(r, r == "Brazlândia")`, true},
		{`label.recall_source == "catalog"`, true},
		{`query.desired_products.all(p, p in item.products)`, true},
		{`item.id == 7`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := NewEval(testItem(), rctx).Evaluate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	rctx := core.NewRecommendContext(core.NewQuery("c1", 0, 0))
	_, err := NewEval(testItem(), rctx).Evaluate(`item.avg_rating >=`)
	assert.Error(t, err)

	_, err = NewEval(testItem(), rctx).Evaluate(`item.name`)
	assert.Error(t, err, "non-bool result")

	assert.Error(t, Validate(`1 + 1`))
	assert.NoError(t, Validate(`true`))
	assert.NoError(t, Validate(""))
}

func TestQueryRule_CompiledOncePerRequest(t *testing.T) {
	q := core.NewQuery("c1", 0, 0)
	q.Preferences.Rule = `item.organic`
	rctx := core.NewRecommendContext(q)

	a, err := QueryRule(rctx)
	require.NoError(t, err)
	b, err := QueryRule(rctx)
	require.NoError(t, err)
	assert.Same(t, a, b)

	ok, err := a.Eval(testItem(), rctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// 另一个请求重新编译，不共享
	other, err := QueryRule(core.NewRecommendContext(q))
	require.NoError(t, err)
	assert.NotSame(t, a, other)

	none, err := QueryRule(core.NewRecommendContext(core.NewQuery("c1", 0, 0)))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRule_UnknownFieldFailsAtEval(t *testing.T) {
	r, err := Compile(`item.avg_ratting >= 4.5`)
	require.NoError(t, err)
	_, err = r.Eval(testItem(), core.NewRecommendContext(core.NewQuery("c1", 0, 0)))
	assert.Error(t, err)
}
