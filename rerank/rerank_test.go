package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/agrorec/core"
)

func items(regions ...string) []*core.Item {
	out := make([]*core.Item, len(regions))
	for i, r := range regions {
		it := core.NewItem(int64(i + 1))
		if r != "" {
			it.Meta[core.MetaRegions] = []string{r}
		}
		out[i] = it
	}
	return out
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestTopNNode(t *testing.T) {
	q := core.NewQuery("c", 0, 0)
	q.Preferences.TopN = 2
	rctx := core.NewRecommendContext(q)

	tests := []struct {
		name string
		n    int
		in   int
		want int
	}{
		{"query top_n", 0, 5, 2},
		{"explicit n wins", 3, 5, 3},
		{"fewer than n", 0, 1, 1},
		{"empty", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]*core.Item, tt.in)
			for i := range in {
				in[i] = core.NewItem(int64(i))
			}
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), rctx, in)
			require.NoError(t, err)
			assert.Len(t, out, tt.want)
		})
	}
}

func TestDiversity(t *testing.T) {
	in := items("Gama", "GAMA", "Brazlândia", "", "Gama")
	out, err := (&Diversity{}).Process(context.Background(), nil, in)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4, 2, 5}, ids(out))

	out, err = (&Diversity{MaxPerRegion: 2}).Process(context.Background(), nil, items("Gama", "Gama", "Gama"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(out))
}
