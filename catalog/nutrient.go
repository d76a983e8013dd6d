package catalog

import (
	"sort"

	"github.com/rushteam/agrorec/core"
)

// NutrientRecord 是 TACO 表中一种食物每 100g 的原始营养值。
type NutrientRecord struct {
	Product       string  `json:"product" yaml:"product"`
	TacoID        int     `json:"taco_id" yaml:"taco_id"`
	Group         string  `json:"group" yaml:"group"`
	MoisturePct   float64 `json:"moisture_pct" yaml:"moisture_pct"`
	EnergyKcal    float64 `json:"energy_kcal" yaml:"energy_kcal"`
	ProteinG      float64 `json:"protein_g" yaml:"protein_g"`
	FatG          float64 `json:"fat_g" yaml:"fat_g"`
	CarbohydrateG float64 `json:"carbohydrate_g" yaml:"carbohydrate_g"`
	FiberG        float64 `json:"fiber_g" yaml:"fiber_g"`
	CalciumMg     float64 `json:"calcium_mg" yaml:"calcium_mg"`
	VitaminCMg    float64 `json:"vitamin_c_mg" yaml:"vitamin_c_mg"`
}

// NutrientScores 是按全表最大值归一化后的分数，均在 [0,1]。
type NutrientScores struct {
	VitaminC   float64
	Fiber      float64
	LowCalorie float64
	Protein    float64
}

// NutrientFact 是一种产品类别的营养数据及派生分数。
type NutrientFact struct {
	NutrientRecord
	Scores NutrientScores
}

// NutrientTable 是按产品类别索引的营养表。
// 归一化分数只在构建时计算一次，与查询无关。
type NutrientTable struct {
	facts map[string]*NutrientFact
	order []string
}

// NewNutrientTable 规范化产品名并计算归一化分数。
// 无法规范化的产品被丢弃；同一类别出现多次时保留第一条。
func NewNutrientTable(records []NutrientRecord, vocab *Vocabulary) *NutrientTable {
	t := &NutrientTable{facts: make(map[string]*NutrientFact, len(records))}
	for _, rec := range records {
		name, ok := vocab.Canonicalize(rec.Product)
		if !ok {
			continue
		}
		if _, dup := t.facts[name]; dup {
			continue
		}
		rec.Product = name
		t.facts[name] = &NutrientFact{NutrientRecord: rec}
		t.order = append(t.order, name)
	}

	var maxVitC, maxFiber, maxEnergy, maxProtein float64
	for _, f := range t.facts {
		maxVitC = max(maxVitC, f.VitaminCMg)
		maxFiber = max(maxFiber, f.FiberG)
		maxEnergy = max(maxEnergy, f.EnergyKcal)
		maxProtein = max(maxProtein, f.ProteinG)
	}
	for _, f := range t.facts {
		f.Scores = NutrientScores{
			VitaminC:   ratio(f.VitaminCMg, maxVitC),
			Fiber:      ratio(f.FiberG, maxFiber),
			LowCalorie: 1 - ratio(f.EnergyKcal, maxEnergy),
			Protein:    ratio(f.ProteinG, maxProtein),
		}
	}
	return t
}

// ratio 在 max 为 0 时返回 0，避免 NaN。
func ratio(v, maxV float64) float64 {
	if maxV <= 0 {
		return 0
	}
	return v / maxV
}

// Len 返回表中产品数。
func (t *NutrientTable) Len() int { return len(t.order) }

// Get 按规范化产品名查询。
func (t *NutrientTable) Get(product string) (*NutrientFact, bool) {
	f, ok := t.facts[product]
	return f, ok
}

// Score 返回某产品在给定营养目标下的归一化分数。
// 产品不存在或目标为空时 ok=false。
func (t *NutrientTable) Score(product string, obj core.NutritionObjective) (float64, bool) {
	f, ok := t.facts[product]
	if !ok {
		return 0, false
	}
	switch obj {
	case core.ObjectiveHighVitaminC:
		return f.Scores.VitaminC, true
	case core.ObjectiveHighFiber:
		return f.Scores.Fiber, true
	case core.ObjectiveLowCalorie:
		return f.Scores.LowCalorie, true
	case core.ObjectiveHighProtein:
		return f.Scores.Protein, true
	default:
		return 0, false
	}
}

// Top 返回目标分数最高的 n 种产品（分数相同按名称排序）。
func (t *NutrientTable) Top(obj core.NutritionObjective, n int) []*NutrientFact {
	out := make([]*NutrientFact, 0, len(t.order))
	for _, name := range t.order {
		if _, ok := t.Score(name, obj); ok {
			out = append(out, t.facts[name])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, _ := t.Score(out[i].Product, obj)
		sj, _ := t.Score(out[j].Product, obj)
		if si != sj {
			return si > sj
		}
		return out[i].Product < out[j].Product
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Records 以加载顺序返回原始记录（已规范化产品名）。
func (t *NutrientTable) Records() []NutrientRecord {
	out := make([]NutrientRecord, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.facts[name].NutrientRecord)
	}
	return out
}
