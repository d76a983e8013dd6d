package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/agrorec/core"
)

func fp(v float64) *float64 { return &v }

func testVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := NewVocabulary(
		[]string{"Alface", "Tomate", "Banana", "Cenoura"},
		map[string]string{"Alface Americana": "Alface", "Banana Prata": "Banana", "Jaca": "Jabuticaba"},
	)
	require.NoError(t, err)
	return v
}

func testNutrients() []NutrientRecord {
	return []NutrientRecord{
		{Product: "Alface", EnergyKcal: 10, ProteinG: 1, FiberG: 2, VitaminCMg: 15},
		{Product: "Tomate", EnergyKcal: 15, ProteinG: 1, FiberG: 1, VitaminCMg: 21},
		{Product: "Banana Prata", EnergyKcal: 100, ProteinG: 2, FiberG: 2, VitaminCMg: 0},
	}
}

func TestVocabulary_Canonicalize(t *testing.T) {
	v := testVocabulary(t)
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"Alface Americana", "Alface", true},
		{"  Tomate ", "Tomate", true},
		{"Banana Prata", "Banana", true},
		{"Jaca", "", false}, // 映射目标不在范围内
		{"Pepino", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := v.Canonicalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVocabulary_CanonicalizeAllDedupesInOrder(t *testing.T) {
	v := testVocabulary(t)
	got := v.CanonicalizeAll([]string{"Tomate", "Alface Americana", "Pepino", "Alface", "Tomate"})
	assert.Equal(t, []string{"Tomate", "Alface"}, got)
	assert.Equal(t, []string{"Jaca", "Pepino"}, v.Unmapped([]string{"Pepino", "Tomate", "Jaca", "Pepino"}))
}

func TestNewVocabulary_EmptyScope(t *testing.T) {
	_, err := NewVocabulary(nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsMissingTable(err))
}

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	assert.Len(t, v.Scope(), 35)
	got, ok := v.Canonicalize("Couve-Flor")
	assert.True(t, ok)
	assert.Equal(t, "Brócolis", got)
	for raw, target := range v.File().Mapping {
		assert.True(t, v.Contains(target), "mapping %q targets %q outside scope", raw, target)
	}
}

func TestLoad(t *testing.T) {
	v := testVocabulary(t)
	assocs := []AssociationRecord{
		{ID: 1, Name: "A", Lat: fp(-15.8), Lon: fp(-47.9), RawProducts: []string{"Alface Americana", "Tomate", "Jaca"}, Organic: true, AvgRating: 4.5},
		{ID: 2, Name: "B", RawProducts: []string{"Banana Prata"}, AvgRating: 9},
		{ID: 3, Name: "C", Lat: fp(-15.9), Lon: fp(-48.1), RawProducts: []string{"Tomate"}},
	}
	cat, err := Load(v, assocs, testNutrients(), []ProductionRecord{})
	require.NoError(t, err)

	a, ok := cat.Association(1)
	require.True(t, ok)
	assert.Equal(t, []string{"Alface", "Tomate"}, a.Products)
	assert.True(t, a.Offers("Tomate"))
	assert.False(t, a.Offers("Jaca"))
	require.NotNil(t, a.Location)

	b, _ := cat.Association(2)
	assert.Nil(t, b.Location)
	assert.Equal(t, 5.0, b.AvgRating)

	assert.Equal(t, []int64{1, 3}, cat.WithProduct("Tomate"))
	_, ok = cat.Association(99)
	assert.False(t, ok)

	s := cat.Stats()
	assert.Equal(t, Stats{
		Associations:     3,
		DistinctProducts: 3,
		ProductLinks:     4,
		Organic:          1,
		MissingLocation:  1,
		NutrientProducts: 3,
	}, s)
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	v := testVocabulary(t)
	ok := []AssociationRecord{{ID: 1, Name: "A"}}
	tests := []struct {
		name      string
		vocab     *Vocabulary
		assocs    []AssociationRecord
		nutrients []NutrientRecord
		prod      []ProductionRecord
		missing   bool
	}{
		{"nil vocabulary", nil, ok, testNutrients(), []ProductionRecord{}, true},
		{"no associations", v, nil, testNutrients(), []ProductionRecord{}, true},
		{"no nutrients", v, ok, nil, []ProductionRecord{}, true},
		{"nutrients outside vocabulary", v, ok, []NutrientRecord{{Product: "Pepino"}}, []ProductionRecord{}, true},
		{"nil production", v, ok, testNutrients(), nil, true},
		{"duplicate id", v, []AssociationRecord{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}}, testNutrients(), []ProductionRecord{}, false},
		{"zero id", v, []AssociationRecord{{ID: 0, Name: "A"}}, testNutrients(), []ProductionRecord{}, false},
		{"empty name", v, []AssociationRecord{{ID: 1, Name: "  "}}, testNutrients(), []ProductionRecord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.vocab, tt.assocs, tt.nutrients, tt.prod)
			require.Error(t, err)
			if tt.missing {
				assert.True(t, core.IsMissingTable(err), "got %v", err)
			} else {
				assert.True(t, core.IsInvalidInput(err), "got %v", err)
			}
		})
	}
}

func TestNutrientTable_Scores(t *testing.T) {
	tbl := NewNutrientTable(testNutrients(), testVocabulary(t))
	require.Equal(t, 3, tbl.Len())

	vc, ok := tbl.Score("Tomate", core.ObjectiveHighVitaminC)
	require.True(t, ok)
	assert.InDelta(t, 1.0, vc, 1e-9)

	vc, _ = tbl.Score("Alface", core.ObjectiveHighVitaminC)
	assert.InDelta(t, 15.0/21.0, vc, 1e-9)

	lc, _ := tbl.Score("Banana", core.ObjectiveLowCalorie)
	assert.InDelta(t, 0.0, lc, 1e-9)
	lc, _ = tbl.Score("Alface", core.ObjectiveLowCalorie)
	assert.InDelta(t, 0.9, lc, 1e-9)

	_, ok = tbl.Score("Alface", core.ObjectiveNone)
	assert.False(t, ok)
	_, ok = tbl.Score("Cenoura", core.ObjectiveHighFiber)
	assert.False(t, ok)

	top := tbl.Top(core.ObjectiveHighFiber, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Alface", top[0].Product)
	assert.Equal(t, "Banana", top[1].Product)
}

func TestNutrientTable_ZeroMaxIsZeroNotNaN(t *testing.T) {
	tbl := NewNutrientTable([]NutrientRecord{{Product: "Alface"}, {Product: "Tomate"}}, testVocabulary(t))
	for _, obj := range []core.NutritionObjective{core.ObjectiveHighVitaminC, core.ObjectiveHighFiber, core.ObjectiveHighProtein} {
		s, ok := tbl.Score("Alface", obj)
		require.True(t, ok)
		assert.Equal(t, 0.0, s)
	}
	s, _ := tbl.Score("Alface", core.ObjectiveLowCalorie)
	assert.Equal(t, 1.0, s)
}

func TestProductionIndex(t *testing.T) {
	idx := NewProductionIndex([]ProductionRecord{
		{Region: "Brazlândia", Product: "Alface Americana", OutputT: 600},
		{Region: "BRAZLÂNDIA", Product: "Alface", OutputT: 200},
		{Region: "Gama", Product: "Alface", OutputT: 200},
		{Region: "Gama", Product: "Pepino", OutputT: 999},
		{Region: "Gama", Product: "Tomate", OutputT: 0},
	}, testVocabulary(t))

	assert.Equal(t, 1, idx.Dropped())
	share, ok := idx.Share("brazlândia", "Alface")
	require.True(t, ok)
	assert.InDelta(t, 80.0, share, 1e-9)

	share, ok = idx.Share("Gama", "Tomate")
	require.True(t, ok)
	assert.Equal(t, 0.0, share)

	_, ok = idx.Share("Planaltina", "Alface")
	assert.False(t, ok)

	top := idx.TopRegions("Alface", 1)
	require.Len(t, top, 1)
	assert.Equal(t, "BRAZLÂNDIA", top[0].Region)
	assert.InDelta(t, 800.0, top[0].OutputT, 1e-9)
	assert.Equal(t, []string{"Alface", "Tomate"}, idx.Products())
}

func TestParsePriceTier(t *testing.T) {
	assert.Equal(t, PriceLow, ParsePriceTier("Baixo"))
	assert.Equal(t, PriceMedium, ParsePriceTier("Médio"))
	assert.Equal(t, PriceHigh, ParsePriceTier("high"))
	assert.Equal(t, PriceUnknown, ParsePriceTier("?"))
}
