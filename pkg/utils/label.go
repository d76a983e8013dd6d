package utils

import "strconv"

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// 例如 recall_source=catalog、filtered=filter.distance、rank_model=linear。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank
}

// NewLabel 创建 Label。
func NewLabel(value, source string) Label {
	return Label{Value: value, Source: source}
}

// ScoreLabel 以固定 4 位小数记录一个分数，便于 explain 输出稳定。
func ScoreLabel(score float64, source string) Label {
	return Label{Value: strconv.FormatFloat(score, 'f', 4, 64), Source: source}
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积。
// 任一侧为空时直接取另一侧。
func MergeLabel(existing, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}
	return Label{
		Value:  existing.Value + "|" + incoming.Value,
		Source: joinNonEmpty(existing.Source, incoming.Source, ","),
	}
}

func joinNonEmpty(a, b, sep string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + sep + b
	}
}
