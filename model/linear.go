package model

import (
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-json"

	"github.com/rushteam/agrorec/core"
)

// LinearModel 是加权求和模型：
//
//	score = Bias + Σ Weight_i · Feature_i
//
// 与逻辑回归不同，这里不做 Sigmoid 变换；权重不要求和为 1，
// 因此分数只在同一次查询的候选之间可比较。
// 不在 Weights 中的特征贡献为 0。
// 累加顺序固定（core.FeatureKeys 在前，其余按名称），相同输入得到逐位相同的分数。
type LinearModel struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// NewLinearModel 以给定权重创建模型。
func NewLinearModel(weights map[string]float64) *LinearModel {
	return &LinearModel{Weights: weights}
}

// LoadLinearModel 从 JSON 文件加载模型：{"bias": 0, "weights": {"distance": 0.25}}。
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse linear model: %w", err)
	}
	return &m, nil
}

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) Predict(features map[string]float64) (float64, error) {
	score := m.Bias
	for _, k := range m.keys() {
		score += m.Weights[k] * features[k]
	}
	return score, nil
}

// keys 返回 Weights 的累加顺序。
func (m *LinearModel) keys() []string {
	out := make([]string, 0, len(m.Weights))
	for _, k := range core.FeatureKeys {
		if _, ok := m.Weights[k]; ok {
			out = append(out, k)
		}
	}
	if len(out) == len(m.Weights) {
		return out
	}
	extra := make([]string, 0, len(m.Weights)-len(out))
	for k := range m.Weights {
		if !slices.Contains(core.FeatureKeys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
