package collector

import (
	"fmt"
	"strconv"
	"strings"
)

// missingValue is the sentinel emitted for any field that is absent,
// malformed, or empty in a remote document.
const missingValue = "None"

// SafeGet descends doc one key at a time and returns the terminal value
// as a trimmed string. It never panics: a missing key, a non-mapping
// intermediate, or an empty terminal all degrade to the sentinel.
func SafeGet(doc map[string]interface{}, keys ...string) string {
	var current interface{} = doc
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return missingValue
		}
		value, ok := m[key]
		if !ok {
			return missingValue
		}
		current = value
	}
	return stringify(current)
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return missingValue
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return missingValue
		}
		return s
	case bool:
		if !v {
			return missingValue
		}
		return "true"
	case float64:
		if v == 0 {
			return missingValue
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s := strings.TrimSpace(fmt.Sprintf("%v", v))
		if s == "" {
			return missingValue
		}
		return s
	}
}
