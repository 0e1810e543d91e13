package ingest

import (
	"encoding/json"
	"strings"
	"unicode"
)

// NormalizeKeys rewrites every camelCase object key of a JSON document to
// snake_case so that payloads from camelCase clients bind onto the
// canonical schema. Keys already in snake_case are left alone. When both
// spellings of a key are present, the snake_case one wins.
func NormalizeKeys(body []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(normalize(doc))
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			snake := SnakeCase(k)
			if _, exists := out[snake]; exists && snake != k {
				continue
			}
			out[snake] = normalize(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	}
	return v
}

// SnakeCase converts stationId to station_id and IsActive to is_active.
// Runs of capitals stay together: shiftID becomes shift_id.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])
			if (prevLower || nextLower) && b.Len() > 0 && runes[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
