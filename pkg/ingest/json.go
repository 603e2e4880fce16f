package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"backoffice-hq/saturn/pkg/admission"
)

// readJSON reads a JSON file whose root is either a list of objects or an
// object with a "requests" list. Field values are kept as their literal
// string form; scalars are stringified, null and absent fields become "".
func readJSON(path string) ([]admission.RawRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, formatError(path, "input file not found", err)
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, formatError(path, "malformed JSON", err)
	}

	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		nested, ok := v["requests"]
		if !ok {
			return nil, formatError(path, `JSON object root must carry a "requests" list`, nil)
		}
		items, ok = nested.([]any)
		if !ok {
			return nil, formatError(path, `JSON "requests" value is not a list`, nil)
		}
	default:
		return nil, formatError(path, "JSON root must be a list or an object with a \"requests\" list", nil)
	}

	rows := make([]admission.RawRequest, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, formatError(path, fmt.Sprintf("JSON element %d is not an object", i), nil)
		}

		row := make(map[string]string, len(obj))
		for k, v := range obj {
			row[k] = jsonScalarString(v)
		}
		if missing := missingColumns(keysOf(obj)); len(missing) > 0 {
			return nil, formatError(path, fmt.Sprintf("JSON element %d missing required columns: %s", i, strings.Join(missing, ", ")), nil)
		}
		rows = append(rows, rowToRequest(row))
	}
	return rows, nil
}

func keysOf(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	return keys
}

// jsonScalarString renders a JSON scalar as the raw string the rest of the
// pipeline expects. String values pass through verbatim.
func jsonScalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
