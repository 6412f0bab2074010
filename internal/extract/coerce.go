package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool, int, int64:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}

// coerceText accepts a string or a list of strings, joining list items
// with newlines.
func coerceText(v any) string {
	items, ok := v.([]any)
	if !ok {
		return coerceString(v)
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// coerceFloat accepts numbers and numeric strings. NaN and infinities are
// rejected.
func coerceFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceInt truncates numeric values toward zero.
func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	f, ok := coerceFloat(v)
	if !ok || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
