package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Shape is the wire representation of a list-like or map-like field.
// The backend returns the same field as a bare value, wrapped in {"data": ...},
// as a JSON encoded string, or not at all.
type Shape int

const (
	ShapeNull Shape = iota
	ShapeArray
	ShapeObject
	ShapeWrapped
	ShapeString
	ShapeUnknown
)

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	case ShapeWrapped:
		return "wrapped"
	case ShapeString:
		return "string"
	default:
		return "unknown"
	}
}

// maxShapeDepth bounds string-in-string and data-in-data nesting.
const maxShapeDepth = 4

// DetectShape classifies raw without decoding it fully.
func DetectShape(raw json.RawMessage) Shape {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ShapeNull
	}
	switch raw[0] {
	case '[':
		return ShapeArray
	case '"':
		return ShapeString
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ShapeUnknown
		}
		if data, ok := fields["data"]; ok && (len(fields) == 1 || DetectShape(data) == ShapeArray) {
			return ShapeWrapped
		}
		return ShapeObject
	default:
		return ShapeUnknown
	}
}

// NormalizeIDs resolves an id list field to a clean []string.
// It never fails: an unparseable value yields an empty list and ok == false,
// which callers report as a shape ambiguity.
func NormalizeIDs(raw json.RawMessage) (ids []string, ok bool) {
	return normalizeIDs(raw, 0)
}

func normalizeIDs(raw json.RawMessage, depth int) ([]string, bool) {
	if depth > maxShapeDepth {
		return []string{}, false
	}
	switch DetectShape(raw) {
	case ShapeNull:
		return []string{}, true
	case ShapeArray:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return []string{}, false
		}
		ids := make([]string, 0, len(items))
		ok := true
		for _, item := range items {
			id, valid := scalarString(item)
			if !valid {
				ok = false
				continue
			}
			if id = CleanID(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, ok
	case ShapeWrapped:
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return []string{}, false
		}
		return normalizeIDs(wrapped.Data, depth+1)
	case ShapeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return []string{}, false
		}
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		return normalizeIDs(json.RawMessage(s), depth+1)
	default:
		return []string{}, false
	}
}

// NormalizeScores resolves a criterion -> score map field.
// Scores may be numbers or numeric strings; the map may be wrapped or JSON encoded.
func NormalizeScores(raw json.RawMessage) (scores map[string]float64, ok bool) {
	return normalizeScores(raw, 0)
}

func normalizeScores(raw json.RawMessage, depth int) (map[string]float64, bool) {
	if depth > maxShapeDepth {
		return map[string]float64{}, false
	}
	switch DetectShape(raw) {
	case ShapeNull:
		return map[string]float64{}, true
	case ShapeObject:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return map[string]float64{}, false
		}
		scores := make(map[string]float64, len(fields))
		ok := true
		for name, val := range fields {
			f, valid := scalarFloat(val)
			if !valid {
				ok = false
				continue
			}
			scores[name] = f
		}
		return scores, ok
	case ShapeWrapped:
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return map[string]float64{}, false
		}
		return normalizeScores(wrapped.Data, depth+1)
	case ShapeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return map[string]float64{}, false
		}
		if strings.TrimSpace(s) == "" {
			return map[string]float64{}, true
		}
		return normalizeScores(json.RawMessage(s), depth+1)
	default:
		return map[string]float64{}, false
	}
}

// NormalizeString decodes a scalar field that may arrive as a string or a number.
func NormalizeString(raw json.RawMessage) (string, bool) {
	if DetectShape(raw) == ShapeNull {
		return "", true
	}
	return scalarString(raw)
}

// NormalizeFloat decodes a numeric field that may arrive as a number or a numeric string.
func NormalizeFloat(raw json.RawMessage) (float64, bool) {
	if DetectShape(raw) == ShapeNull {
		return 0, true
	}
	return scalarFloat(raw)
}

func scalarString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func scalarFloat(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
