// Package conv 读取 YAML/JSON 解析出的 map[string]any 配置。
//
// yaml.v3 把 "1" 解析为 int、把 "0.01" 解析为 float64，encoding/json 则一律为 float64，
// 这里的取值函数对两者都兼容，类型不符时回退到默认值。
package conv

import "fmt"

// ToFloat64 把数值或布尔（1/0）转为 float64。
func ToFloat64(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return number(v)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ConvertSlice 逐个转换元素，convert 返回 false 的元素被丢弃。
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

// SliceAnyToString 读取字符串列表（列名列表等），数字元素按 %g 格式化。
func SliceAnyToString(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		return ConvertSlice(list, func(e any) (string, bool) {
			if s, ok := e.(string); ok {
				return s, true
			}
			if f, ok := number(e); ok {
				return fmt.Sprintf("%g", f), true
			}
			return "", false
		})
	default:
		return nil
	}
}

func lookup(m map[string]any, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok && v != nil
}

// ConfigGet 按 key 取 T，缺失或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	v, ok := lookup(m, key)
	if !ok {
		return defaultVal
	}
	if t, ok := v.(T); ok {
		return t
	}
	return defaultVal
}

// ConfigGetInt64 取整数，浮点值向零截断。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	v, ok := lookup(m, key)
	if !ok {
		return defaultVal
	}
	f, ok := number(v)
	if !ok {
		return defaultVal
	}
	return int64(f)
}

// ConfigGetFloat64 取浮点数，整数值同样接受；布尔值不接受。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	v, ok := lookup(m, key)
	if !ok {
		return defaultVal
	}
	f, ok := number(v)
	if !ok {
		return defaultVal
	}
	return f
}
