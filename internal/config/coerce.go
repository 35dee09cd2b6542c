package config

import (
	"strconv"
	"strings"
)

// Coercion helpers. All of them are total: any input value resolves to a
// concrete typed result, falling back to the supplied default instead of
// failing. Hand-edited or env-templated YAML routinely carries "true", "0",
// "3.5" and similar as strings, and a single bad field must never take down
// pipeline startup.

// AsInt coerces v to an int. Bools map to 0/1, floats truncate, numeric
// strings parse (fractional strings truncate). Anything else returns def.
func AsInt(v any, def int) int {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return int(t)
	case uint64:
		return int(t)
	case float32:
		return int(t)
	case float64:
		return int(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return def
	default:
		return def
	}
}

// AsFloat coerces v to a float64. Bools map to 0.0/1.0, integers widen,
// numeric strings parse. Anything else returns def.
func AsFloat(v any, def float64) float64 {
	switch t := v.(type) {
	case bool:
		if t {
			return 1.0
		}
		return 0.0
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
		return def
	default:
		return def
	}
}

// AsBool coerces v to a bool. Only exact bools pass through; strings are
// matched case-insensitively against {1,true,yes,on} / {0,false,no,off}.
// Anything else (including numbers) returns def.
func AsBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		default:
			return def
		}
	default:
		return def
	}
}

// AsString coerces v to a string; non-strings return def.
func AsString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
