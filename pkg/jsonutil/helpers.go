// Package jsonutil holds the JSON helpers behind flapctl's --json output
// and its config diff.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Indent marshals v with two-space indentation.
func Indent(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling %T: %w", v, err)
	}
	return string(b), nil
}

// Change is one difference between two JSON documents.
type Change struct {
	Path     string `json:"path"`
	Type     string `json:"type"` // "add", "update", "delete"
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// Diff marshals base and cur and reports where they differ. Nested
// objects are compared key by key and their paths joined with dots, so a
// changed recorder batch size shows up as "recorder.batch_size".
func Diff(base, cur interface{}) ([]Change, error) {
	baseMap, err := toMap(base)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	curMap, err := toMap(cur)
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}
	return diffMaps("", baseMap, curMap, nil), nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%T is not a JSON object: %w", v, err)
	}
	return m, nil
}

func diffMaps(prefix string, oldMap, newMap map[string]interface{}, changes []Change) []Change {
	allKeys := make(map[string]bool)
	for k := range oldMap {
		allKeys[k] = true
	}
	for k := range newMap {
		allKeys[k] = true
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		oldVal, oldExists := oldMap[k]
		newVal, newExists := newMap[k]

		switch {
		case !oldExists && newExists:
			changes = append(changes, Change{Path: path, Type: "add", NewValue: toJSONStr(newVal)})
		case oldExists && !newExists:
			changes = append(changes, Change{Path: path, Type: "delete", OldValue: toJSONStr(oldVal)})
		default:
			oldStr, newStr := toJSONStr(oldVal), toJSONStr(newVal)
			if oldStr == newStr {
				continue
			}
			oldChild, oldIsMap := oldVal.(map[string]interface{})
			newChild, newIsMap := newVal.(map[string]interface{})
			if oldIsMap && newIsMap {
				changes = diffMaps(path, oldChild, newChild, changes)
				continue
			}
			changes = append(changes, Change{Path: path, Type: "update", OldValue: oldStr, NewValue: newStr})
		}
	}
	return changes
}

func toJSONStr(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
