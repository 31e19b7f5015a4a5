// Package coerce converts loosely typed JSON values into column values.
//
// Conversions never fail: input that cannot be interpreted becomes NaN for
// floats, nil for integers, text and times, and false for booleans. Numeric
// parsing accepts the longest numeric prefix of a string, so "3.5abc" is 3.5.
package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Float returns v as a float64, or NaN when v is missing or not numeric.
func Float(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		return parseFloatPrefix(x.String())
	case string:
		return parseFloatPrefix(x)
	default:
		return math.NaN()
	}
}

// Int returns v as an integer truncated toward zero, or nil when v is missing
// or has no leading digits.
func Int(v any) *int64 {
	switch x := v.(type) {
	case int:
		n := int64(x)
		return &n
	case int64:
		return &x
	case float64:
		return truncate(x)
	case json.Number:
		return parseIntPrefix(x.String())
	case string:
		return parseIntPrefix(x)
	default:
		return nil
	}
}

// Bool is true only for the exact string "true".
func Bool(v any) bool {
	s, ok := v.(string)
	return ok && s == "true"
}

// Text returns v rendered as text, or nil when v is missing or null.
func Text(v any) *string {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case json.Number:
		s = x.String()
	case bool:
		s = strconv.FormatBool(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		s = string(b)
	}
	return &s
}

// Time parses v as a timestamp. Strings are tried against RFC 3339 and a few
// SQL-style layouts; numbers are Unix milliseconds.
func Time(v any) *time.Time {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return nil
		}
		t := time.UnixMilli(ms).UTC()
		return &t
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		t := time.UnixMilli(int64(x)).UTC()
		return &t
	default:
		return nil
	}
}

func parseFloatPrefix(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	// out of range input yields ±Inf together with an error
	f, _ := strconv.ParseFloat(m, 64)
	return f
}

func parseIntPrefix(s string) *int64 {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func truncate(f float64) *int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return nil
	}
	n := int64(f)
	return &n
}
