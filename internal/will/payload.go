package will

// Tolerant payload accessors. The payload has already passed schema
// validation, but the builder must still survive malformed shapes (a scalar
// where a list was expected, a missing sub-object) by decaying to zero values
// instead of panicking. Recovery here is shape recovery only; no business
// rule is re-checked.

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	return asMap(m[key])
}

func getList(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	return asList(m[key])
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

// getFloat accepts JSON numbers decoded as float64 as well as int values
// produced by hand-built payloads in tests.
func getFloat(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch n := m[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func getFloatPtr(m map[string]any, key string) *float64 {
	if f, ok := getFloat(m, key); ok {
		return &f
	}
	return nil
}

func getInt(m map[string]any, key string, fallback int) int {
	if f, ok := getFloat(m, key); ok {
		return int(f)
	}
	return fallback
}

func getStringList(m map[string]any, key string) []string {
	var out []string
	for _, v := range getList(m, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
