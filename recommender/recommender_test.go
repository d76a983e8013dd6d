package recommender

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/agrorec/catalog"
	_ "github.com/rushteam/agrorec/config/builders"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/dataset"
	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/recall"
	"github.com/rushteam/agrorec/store"
)

const (
	originLat = -15.80
	originLon = -47.90
)

func ptr(v float64) *float64 { return &v }

// 三家合作社：A 在原点，B 在正北约 50 km，C 在约 10 km。
func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	assocs := []catalog.AssociationRecord{
		{ID: 1, Name: "A", Lat: ptr(originLat), Lon: ptr(originLon), Regions: []string{"Gama"},
			RawProducts: []string{"Alface Americana", "Tomate"}, AvgRating: 4},
		{ID: 2, Name: "B", Lat: ptr(originLat + 0.452), Lon: ptr(originLon), Regions: []string{"Planaltina"},
			RawProducts: []string{"Tomate"}, AvgRating: 5, Organic: true},
		{ID: 3, Name: "C", Lat: ptr(originLat + 0.09), Lon: ptr(originLon), Regions: []string{"Brazlândia"},
			RawProducts: []string{"Morango", "Tomate"}, AvgRating: 3, Organic: true},
	}
	nutrients := []catalog.NutrientRecord{
		{Product: "Alface", EnergyKcal: 9, FiberG: 1, VitaminCMg: 6, ProteinG: 0.6},
		{Product: "Tomate", EnergyKcal: 15, FiberG: 1.2, VitaminCMg: 11, ProteinG: 1.1},
		{Product: "Morango", EnergyKcal: 30, FiberG: 1.7, VitaminCMg: 10, ProteinG: 0.9},
	}
	production := []catalog.ProductionRecord{
		{Region: "GAMA", Product: "Tomate", OutputT: 20},
		{Region: "BRAZLÂNDIA", Product: "Tomate", OutputT: 80},
		{Region: "BRAZLÂNDIA", Product: "Morango", OutputT: 17},
	}
	cat, err := catalog.Load(catalog.DefaultVocabulary(), assocs, nutrients, production)
	require.NoError(t, err)
	m, err := recall.NewUtilityMatrix([]recall.RatingRecord{
		{ConsumerID: "c1", AssociationID: 1, Rating: 5},
		{ConsumerID: "c1", AssociationID: 2, Rating: 4},
		{ConsumerID: "c2", AssociationID: 1, Rating: 4},
		{ConsumerID: "c2", AssociationID: 3, Rating: 5},
		{ConsumerID: "c3", AssociationID: 2, Rating: 2},
		{ConsumerID: "c3", AssociationID: 3, Rating: 4},
	})
	require.NoError(t, err)
	return NewSnapshot(cat, m)
}

func ids(recs []Recommendation) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.AssociationID
	}
	return out
}

func TestRecommend_DistanceCutoff(t *testing.T) {
	rec := New(testSnapshot(t))
	q := core.NewQuery("nobody", originLat, originLon)

	results, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.NotContains(t, ids(results), int64(2), "B is ~50 km away")
	require.Len(t, results, 2)

	byID := map[int64]Recommendation{}
	for _, r := range results {
		byID[r.AssociationID] = r
		assert.GreaterOrEqual(t, r.FinalScore, 0.0)
	}
	assert.InDelta(t, 1.0, byID[1].SubScores.Distance, 1e-9)
	assert.InDelta(t, 0.0, byID[3].SubScores.Distance, 1e-9)
	assert.InDelta(t, 0.0, byID[1].DistanceKm, 1e-6)
	assert.InDelta(t, 0.8, byID[1].SubScores.Rating, 1e-9)

	q.Preferences.MaxDistanceKm = 60
	results, err = rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRecommend_EmptyDesiredProducts(t *testing.T) {
	rec := New(testSnapshot(t))
	q := core.NewQuery("c1", originLat, originLon)
	q.Preferences.NutritionObjective = core.ObjectiveHighVitaminC
	q.Preferences.MaxDistanceKm = 60

	results, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Zero(t, r.SubScores.Nutrition)
		assert.Zero(t, r.SubScores.Regional)
	}
}

func TestRecommend_RegionalRelevance(t *testing.T) {
	rec := New(testSnapshot(t))
	q := core.NewQuery("nobody", originLat, originLon)
	q.Preferences.DesiredProducts = []string{"Tomate"}
	q.Preferences.Weights = core.Weights{Regional: 1}

	results, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int64{3, 1}, ids(results), "80 percent share ranks above 20 percent")
	assert.InDelta(t, 0.8, results[0].SubScores.Regional, 1e-9)
	assert.InDelta(t, 0.2, results[1].SubScores.Regional, 1e-9)
}

func TestRecommend_Idempotent(t *testing.T) {
	rec := New(testSnapshot(t))
	q := core.NewQuery("c1", originLat, originLon)
	q.Preferences.DesiredProducts = []string{"Tomate", "Alface"}
	q.Preferences.NutritionObjective = core.ObjectiveLowCalorie
	q.Preferences.MaxDistanceKm = 60

	q.Preferences.Weights = core.Weights{Distance: 0.31, Rating: 0.17, Nutrition: 0.23, Regional: 0.19, Collaborative: 0.11}

	first, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	for i := 0; i < 200; i++ {
		again, err := rec.Recommend(context.Background(), q)
		require.NoError(t, err)
		require.Equal(t, first, again, "run %d", i)
	}
}

func TestRecommend_ColdStartCollaborativeInert(t *testing.T) {
	rec := New(testSnapshot(t))
	q := core.NewQuery("nobody", originLat, originLon)
	q.Preferences.MaxDistanceKm = 60

	with, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	q.Preferences.Weights.Collaborative = 0
	without, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, ids(with), ids(without))
	for _, r := range with {
		assert.Zero(t, r.SubScores.Collaborative)
	}
}

func TestRecommend_CollaborativeRescaled(t *testing.T) {
	rec := New(testSnapshot(t))
	q := core.NewQuery("c1", originLat, originLon)
	q.Preferences.MaxDistanceKm = 60

	results, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	maxCF := 0.0
	for _, r := range results {
		assert.LessOrEqual(t, r.SubScores.Collaborative, 1.0)
		maxCF = max(maxCF, r.SubScores.Collaborative)
	}
	assert.InDelta(t, 1.0, maxCF, 1e-9)
}

func TestRecommend_Filters(t *testing.T) {
	rec := New(testSnapshot(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*core.Preferences)
		want   []int64
	}{
		{"organic only", func(p *core.Preferences) { p.OrganicOnly = true }, []int64{2, 3}},
		{"desired alias canonicalized", func(p *core.Preferences) { p.DesiredProducts = []string{"Alface Americana"} }, []int64{1}},
		{"unknown product matches nothing", func(p *core.Preferences) { p.DesiredProducts = []string{"Pizza"} }, []int64{}},
		{"exclude ids", func(p *core.Preferences) { p.ExcludeIDs = []int64{1, 3} }, []int64{2}},
		{"rule", func(p *core.Preferences) { p.Rule = `"Morango" in item.products` }, []int64{3}},
		{"top n", func(p *core.Preferences) { p.TopN = 1 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := core.NewQuery("nobody", originLat, originLon)
			q.Preferences.MaxDistanceKm = 60
			tt.modify(&q.Preferences)
			results, err := rec.Recommend(ctx, q)
			require.NoError(t, err)
			require.NotNil(t, results)
			if tt.want == nil {
				assert.Len(t, results, 1)
				return
			}
			assert.ElementsMatch(t, tt.want, ids(results))
		})
	}
}

func TestRecommend_InvalidQuery(t *testing.T) {
	rec := New(testSnapshot(t))
	tests := []struct {
		name   string
		modify func(*core.Query)
	}{
		{"latitude", func(q *core.Query) { q.Location.Lat = 91 }},
		{"top n", func(q *core.Query) { q.Preferences.TopN = 0 }},
		{"max distance", func(q *core.Query) { q.Preferences.MaxDistanceKm = -1 }},
		{"negative weight", func(q *core.Query) { q.Preferences.Weights.Rating = -0.1 }},
		{"objective", func(q *core.Query) { q.Preferences.NutritionObjective = "sweet" }},
		{"rule syntax", func(q *core.Query) { q.Preferences.Rule = "item.organic &&" }},
		{"rule type", func(q *core.Query) { q.Preferences.Rule = "1 + 2" }},
		{"rule unknown field", func(q *core.Query) { q.Preferences.Rule = "item.avg_ratting >= 4.5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := core.NewQuery("c1", originLat, originLon)
			tt.modify(&q)
			_, err := rec.Recommend(context.Background(), q)
			require.Error(t, err)
			assert.True(t, core.IsInvalidInput(err), err.Error())
		})
	}
}

func TestRecommend_Cancelled(t *testing.T) {
	rec := New(testSnapshot(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rec.Recommend(ctx, core.NewQuery("c1", originLat, originLon))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecommend_StoreBlacklist(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	data, _ := json.Marshal([]int64{1})
	require.NoError(t, s.Set(ctx, "test:blacklist", data))
	data, _ = json.Marshal([]int64{3})
	require.NoError(t, s.Set(ctx, "test:block:c1", data))

	rec := New(testSnapshot(t), WithStore(s, "test"))
	q := core.NewQuery("c2", originLat, originLon)
	q.Preferences.MaxDistanceKm = 60
	results, err := rec.Recommend(ctx, q)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, ids(results))

	q.ConsumerID = "c1"
	results, err = rec.Recommend(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(results))
}

func TestRecommend_Diversity(t *testing.T) {
	rec := New(testSnapshot(t), WithDiversity(1))
	q := core.NewQuery("nobody", originLat, originLon)
	q.Preferences.MaxDistanceKm = 60
	results, err := rec.Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestNewFromPipelineConfig(t *testing.T) {
	snap := testSnapshot(t)
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: default
  nodes:
    - type: recall.catalog
    - type: filter
      config:
        filters: [distance, organic, products, blacklist, expr]
    - type: rank.hybrid
    - type: rerank.topn
`))
	require.NoError(t, err)
	fromCfg, err := NewFromPipelineConfig(snap, cfg, nil)
	require.NoError(t, err)

	q := core.NewQuery("c1", originLat, originLon)
	q.Preferences.MaxDistanceKm = 60
	q.Preferences.DesiredProducts = []string{"Tomate"}
	got, err := fromCfg.Recommend(context.Background(), q)
	require.NoError(t, err)
	want, err := New(snap).Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "rank.unknown"})
	_, err = NewFromPipelineConfig(snap, cfg, nil)
	assert.Error(t, err)
}

func TestEmbeddedDataset(t *testing.T) {
	tables, err := dataset.LoadEmbedded()
	require.NoError(t, err)
	snap, err := FromTables(tables)
	require.NoError(t, err)
	assert.True(t, snap.CF.Available())

	q := core.NewQuery("Consumidor_001", -15.7942, -47.8822)
	q.Preferences.DesiredProducts = []string{"Alface", "Tomate", "Morango"}
	q.Preferences.NutritionObjective = core.ObjectiveHighVitaminC
	results, err := New(snap).Recommend(context.Background(), q)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), core.DefaultTopN)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].FinalScore, results[i].FinalScore)
	}
}
