package backend

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Field lookup lists. Backends disagree on response field names; each list is
// tried in order and the first usable value wins.
var (
	sqlFields           = []string{"sql", "query", "result"}
	rowFields           = []string{"results", "data"}
	executionTimeFields = []string{"execution_time", "executionTime"}
	explanationFields   = []string{"explanation", "result"}
	errorDetailFields   = []string{"detail", "message"}
	schemaFields        = []string{"tables"}
)

var errNotObject = errors.New("response body is not a JSON object")

// decodeValue decodes a JSON document keeping numbers as json.Number.
func decodeValue(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	v, err := decodeValue(body)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// firstString returns the first non-empty string among fields.
func firstString(obj map[string]any, fields []string) string {
	for _, f := range fields {
		if s, ok := obj[f].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstRows returns the first field holding a list of objects. An empty list
// counts as present.
func firstRows(obj map[string]any, fields []string) ([]map[string]any, bool) {
	for _, f := range fields {
		list, ok := obj[f].([]any)
		if !ok {
			continue
		}
		rows := make([]map[string]any, 0, len(list))
		valid := true
		for _, item := range list {
			row, ok := item.(map[string]any)
			if !ok {
				valid = false
				break
			}
			rows = append(rows, row)
		}
		if valid {
			return rows, true
		}
	}
	return nil, false
}

// firstNonZero returns the first non-zero number among fields.
func firstNonZero(obj map[string]any, fields []string) (float64, bool) {
	for _, f := range fields {
		var v float64
		switch n := obj[f].(type) {
		case json.Number:
			parsed, err := n.Float64()
			if err != nil {
				continue
			}
			v = parsed
		case float64:
			v = n
		default:
			continue
		}
		if v != 0 {
			return v, true
		}
	}
	return 0, false
}
