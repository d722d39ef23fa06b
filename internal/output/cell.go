package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var cellSpace = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// formatCell renders one value as flat text. Lists of scalars are joined
// with ", ", objects and nested lists are compact JSON, nil is empty.
func formatCell(v interface{}, empty string) string {
	switch x := v.(type) {
	case nil:
		return empty
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case []string:
		return strings.Join(x, ", ")
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if !isScalar(item) {
				return compactJSON(x)
			}
			parts = append(parts, formatCell(item, "null"))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		return compactJSON(x)
	case json.RawMessage:
		return compactRaw(x)
	default:
		return fmt.Sprint(x)
	}
}

// tableCell is formatCell for aligned output: "-" for nil and no line
// breaks or tabs.
func tableCell(v interface{}) string {
	return cellSpace.Replace(formatCell(v, "-"))
}

func csvCell(v interface{}) string {
	return formatCell(v, "")
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case nil, string, bool, float64, int:
		return true
	}
	return false
}

func compactJSON(v interface{}) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func compactRaw(raw json.RawMessage) string {
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return b.String()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
