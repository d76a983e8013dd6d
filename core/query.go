package core

import (
	"math"
	"strings"

	"github.com/rushteam/agrorec/pkg/geo"
)

var inf = math.Inf(1)

// NutritionObjective 是查询的营养目标，对应 NutrientFact 中预先归一化的分数列。
type NutritionObjective string

const (
	ObjectiveNone         NutritionObjective = ""
	ObjectiveHighVitaminC NutritionObjective = "high_vitamin_c"
	ObjectiveHighFiber    NutritionObjective = "high_fiber"
	ObjectiveLowCalorie   NutritionObjective = "low_calorie"
	ObjectiveHighProtein  NutritionObjective = "high_protein"
)

var objectiveAliases = map[string]NutritionObjective{
	"high_vitamin_c":  ObjectiveHighVitaminC,
	"high_fiber":      ObjectiveHighFiber,
	"low_calorie":     ObjectiveLowCalorie,
	"high_protein":    ObjectiveHighProtein,
	"alta_vitamina_c": ObjectiveHighVitaminC,
	"alta_fibra":      ObjectiveHighFiber,
	"baixa_caloria":   ObjectiveLowCalorie,
	"alta_proteina":   ObjectiveHighProtein,
}

// ParseNutritionObjective 解析营养目标（兼容葡语别名）；空串返回 ObjectiveNone。
func ParseNutritionObjective(s string) (NutritionObjective, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ObjectiveNone, nil
	}
	if obj, ok := objectiveAliases[s]; ok {
		return obj, nil
	}
	return ObjectiveNone, NewDomainError(ModuleQuery, ErrorCodeInvalidInput, "query: unknown nutrition objective "+s)
}

// Weights 是五个子分数的权重，不要求和为 1。
// 和不为 1 时最终分数不再归一，只在同一次查询内可比较。
type Weights struct {
	Distance      float64 `json:"distance" yaml:"distance" koanf:"distance" validate:"gte=0"`
	Rating        float64 `json:"rating" yaml:"rating" koanf:"rating" validate:"gte=0"`
	Nutrition     float64 `json:"nutrition" yaml:"nutrition" koanf:"nutrition" validate:"gte=0"`
	Regional      float64 `json:"regional" yaml:"regional" koanf:"regional" validate:"gte=0"`
	Collaborative float64 `json:"collaborative" yaml:"collaborative" koanf:"collaborative" validate:"gte=0"`
}

// AsMap 以 Feature key 展开权重，供 model.LinearModel 使用。
func (w Weights) AsMap() map[string]float64 {
	return map[string]float64{
		FeatureDistance:      w.Distance,
		FeatureRating:        w.Rating,
		FeatureNutrition:     w.Nutrition,
		FeatureRegional:      w.Regional,
		FeatureCollaborative: w.Collaborative,
	}
}

// Preferences 是消费者的偏好设置。
type Preferences struct {
	DesiredProducts           []string           `json:"desired_products" yaml:"desired_products" koanf:"desired_products"`
	MaxDistanceKm             float64            `json:"max_distance_km" yaml:"max_distance_km" koanf:"max_distance_km" validate:"gt=0"`
	OrganicOnly               bool               `json:"organic_only" yaml:"organic_only" koanf:"organic_only"`
	NutritionObjective        NutritionObjective `json:"nutrition_objective" yaml:"nutrition_objective" koanf:"nutrition_objective" validate:"omitempty,oneof=high_vitamin_c high_fiber low_calorie high_protein"`
	ConsiderRegionalRelevance bool               `json:"consider_regional_relevance" yaml:"consider_regional_relevance" koanf:"consider_regional_relevance"`
	Weights                   Weights            `json:"weights" yaml:"weights" koanf:"weights"`
	TopN                      int                `json:"top_n" yaml:"top_n" koanf:"top_n" validate:"gt=0"`

	// ExcludeIDs 与 Rule 是附加硬过滤，只会收窄候选集。
	ExcludeIDs []int64 `json:"exclude_ids,omitempty" yaml:"exclude_ids" koanf:"exclude_ids"`
	Rule       string  `json:"rule,omitempty" yaml:"rule" koanf:"rule"`
}

// Query 是一次推荐请求。
type Query struct {
	ConsumerID  string      `json:"consumer_id"`
	Location    geo.Point   `json:"location"`
	Preferences Preferences `json:"preferences"`
}
