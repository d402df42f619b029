package sources

import "strings"

// Upstream aggregator schemas are unstable: the same logical value moves
// between field names and nesting levels across API revisions. Call sites
// therefore declare an ordered list of dot-separated paths per field and
// take the first one that yields a usable value, falling back to an
// explicit default.

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asArray(v any) []any {
	a, _ := v.([]any)
	return a
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// dig walks a dot-separated path through nested JSON objects.
func dig(v any, path string) any {
	current := v
	for _, key := range strings.Split(path, ".") {
		obj := asObject(current)
		if obj == nil {
			return nil
		}
		current = obj[key]
	}
	return current
}

// probeString tries each path in order and returns the first non-empty
// string value.
func probeString(v any, paths ...string) string {
	for _, path := range paths {
		if s := asString(dig(v, path)); s != "" {
			return s
		}
	}
	return ""
}

// probeInt tries each path in order and returns the first positive
// numeric value, truncated to int. Returns 0 when no path yields one.
func probeInt(v any, paths ...string) int {
	for _, path := range paths {
		if n, ok := asNumber(dig(v, path)); ok && n > 0 {
			return int(n)
		}
	}
	return 0
}

// probeArray tries each path in order and returns the first non-empty
// array value.
func probeArray(v any, paths ...string) []any {
	for _, path := range paths {
		if a := asArray(dig(v, path)); len(a) > 0 {
			return a
		}
	}
	return nil
}

// probeBool reports whether any path holds an explicit true.
func probeBool(v any, paths ...string) bool {
	for _, path := range paths {
		if b, ok := dig(v, path).(bool); ok && b {
			return true
		}
	}
	return false
}
