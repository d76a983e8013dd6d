// Package conv 提供从 YAML/JSON 解析结果（map[string]any）中取值的工具，用于 Node 配置。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32、uint64。
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToInt64 将 any 转为 int64。YAML 常得到 int，JSON 常得到 float64，此处统一。
func ToInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float64:
		return int64(val), true
	case float32:
		return int64(val), true
	default:
		return 0, false
	}
}

// ConvertSlice 将 []T 按 convert 转为 []U，convert 返回 false 的元素被跳过。
func ConvertSlice[T, U any](s []T, convert func(T) (U, bool)) []U {
	if s == nil {
		return nil
	}
	out := make([]U, 0, len(s))
	for _, v := range s {
		if u, ok := convert(v); ok {
			out = append(out, u)
		}
	}
	return out
}

// ConfigGet 从 map[string]any 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt64 从 config 取 int64，兼容 int/float64。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	if v, ok := ToInt64(m[key]); ok {
		return v
	}
	return defaultVal
}

// ConfigGetFloat64 从 config 取 float64，兼容整数字面量。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if v, ok := ToFloat64(m[key]); ok {
		return v
	}
	return defaultVal
}

// ConfigGetInt64Slice 从 config 取 []int64（YAML 列表解析为 []any）。
func ConfigGetInt64Slice(m map[string]any, key string) []int64 {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	return ConvertSlice(raw, ToInt64)
}
