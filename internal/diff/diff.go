// Package diff compares two artifact snapshots and produces a typed,
// recursive change tree. It is value-level and deterministic: equality is
// decided on canonical JSON, arrays are compared wholesale, and keys are
// visited in sorted order.
package diff

import (
	"encoding/json"
	"sort"
)

// ChangeType classifies a single field difference.
type ChangeType string

const (
	Added     ChangeType = "added"
	Removed   ChangeType = "removed"
	Modified  ChangeType = "modified"
	Unchanged ChangeType = "unchanged"
)

// FieldChange is one per-key comparison result. Nested object changes hang
// off SubChanges and are never hoisted to the parent level.
type FieldChange struct {
	Field      string        `json:"field"`
	Path       []string      `json:"path"`
	Type       ChangeType    `json:"type"`
	OldValue   interface{}   `json:"old_value,omitempty"`
	NewValue   interface{}   `json:"new_value,omitempty"`
	SubChanges []FieldChange `json:"sub_changes,omitempty"`
}

// Summary tallies change counts over a change list.
type Summary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
}

// System fields never participate in business-level diffing.
var systemFields = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"createdBy": true,
	"updatedBy": true,
}

// Compare diffs two snapshots and returns the per-key change list.
func Compare(oldDoc, newDoc map[string]interface{}) []FieldChange {
	return compare(oldDoc, newDoc, nil)
}

func compare(oldObj, newObj map[string]interface{}, path []string) []FieldChange {
	keys := unionKeys(oldObj, newObj)
	changes := make([]FieldChange, 0, len(keys))

	for _, key := range keys {
		if systemFields[key] {
			continue
		}

		currentPath := appendPath(path, key)
		oldValue, inOld := oldObj[key]
		newValue, inNew := newObj[key]

		switch {
		case inOld && !inNew:
			changes = append(changes, FieldChange{
				Field: key, Path: currentPath, Type: Removed, OldValue: oldValue,
			})
		case !inOld && inNew:
			changes = append(changes, FieldChange{
				Field: key, Path: currentPath, Type: Added, NewValue: newValue,
			})
		case canonical(oldValue) == canonical(newValue):
			changes = append(changes, FieldChange{
				Field: key, Path: currentPath, Type: Unchanged,
				OldValue: oldValue, NewValue: newValue,
			})
		default:
			oldMap, oldIsMap := oldValue.(map[string]interface{})
			newMap, newIsMap := newValue.(map[string]interface{})
			change := FieldChange{
				Field: key, Path: currentPath, Type: Modified,
				OldValue: oldValue, NewValue: newValue,
			}
			if oldIsMap && newIsMap {
				change.SubChanges = compare(oldMap, newMap, currentPath)
			}
			changes = append(changes, change)
		}
	}

	return changes
}

// Summarize counts changes per type. An entry with SubChanges counts once at
// its own level; its children are not added on top of it.
func Summarize(changes []FieldChange) Summary {
	var s Summary
	for _, c := range changes {
		switch c.Type {
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		case Modified:
			s.Modified++
		case Unchanged:
			s.Unchanged++
		}
	}
	return s
}

// ChangedFields returns the top-level field names that are not unchanged,
// in key order. Used for the advisory changed_fields column.
func ChangedFields(oldDoc, newDoc map[string]interface{}) []string {
	var fields []string
	for _, c := range Compare(oldDoc, newDoc) {
		if c.Type != Unchanged {
			fields = append(fields, c.Field)
		}
	}
	return fields
}

// Equal reports whether two values serialize to the same canonical JSON.
func Equal(a, b interface{}) bool {
	return canonical(a) == canonical(b)
}

func canonical(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func unionKeys(a, b map[string]interface{}) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func appendPath(path []string, key string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, key)
}
