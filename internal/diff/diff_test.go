package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func doc(pairs map[string]interface{}) map[string]interface{} {
	return pairs
}

func TestCompareIdentity(t *testing.T) {
	a := doc(map[string]interface{}{
		"name":   "Billing",
		"status": "active",
		"properties": map[string]interface{}{
			"timeout": float64(30),
		},
	})

	changes := Compare(a, a)
	for _, c := range changes {
		assert.Equal(t, Unchanged, c.Type, "field %s", c.Field)
	}

	s := Summarize(changes)
	assert.Equal(t, 0, s.Added)
	assert.Equal(t, 0, s.Removed)
	assert.Equal(t, 0, s.Modified)
	assert.Equal(t, 3, s.Unchanged)
}

func TestCompareAddedRemovedModified(t *testing.T) {
	old := doc(map[string]interface{}{
		"name":   "Billing",
		"status": "active",
		"team":   "payments",
	})
	updated := doc(map[string]interface{}{
		"name":   "Billing",
		"status": "retired",
		"uptime": 99.9,
	})

	changes := Compare(old, updated)
	byField := map[string]FieldChange{}
	for _, c := range changes {
		byField[c.Field] = c
	}

	assert.Equal(t, Unchanged, byField["name"].Type)
	assert.Equal(t, Modified, byField["status"].Type)
	assert.Equal(t, "active", byField["status"].OldValue)
	assert.Equal(t, "retired", byField["status"].NewValue)
	assert.Equal(t, Removed, byField["team"].Type)
	assert.Equal(t, Added, byField["uptime"].Type)

	s := Summarize(changes)
	assert.Equal(t, Summary{Added: 1, Removed: 1, Modified: 1, Unchanged: 1}, s)
}

func TestCompareSymmetry(t *testing.T) {
	a := doc(map[string]interface{}{"name": "A", "status": "active", "team": "x"})
	b := doc(map[string]interface{}{"name": "A", "status": "retired", "owner": "y"})

	forward := Compare(a, b)
	backward := Compare(b, a)
	assert.Len(t, backward, len(forward))

	fw := map[string]FieldChange{}
	for _, c := range forward {
		fw[c.Field] = c
	}
	for _, c := range backward {
		f := fw[c.Field]
		switch f.Type {
		case Added:
			assert.Equal(t, Removed, c.Type)
			assert.Equal(t, f.NewValue, c.OldValue)
		case Removed:
			assert.Equal(t, Added, c.Type)
			assert.Equal(t, f.OldValue, c.NewValue)
		case Modified:
			assert.Equal(t, Modified, c.Type)
			assert.Equal(t, f.OldValue, c.NewValue)
			assert.Equal(t, f.NewValue, c.OldValue)
		default:
			assert.Equal(t, Unchanged, c.Type)
		}
	}
}

func TestCompareNestedObject(t *testing.T) {
	old := doc(map[string]interface{}{
		"name": "Billing",
		"properties": map[string]interface{}{
			"timeout": float64(30),
			"retries": float64(3),
		},
	})
	updated := doc(map[string]interface{}{
		"name": "Billing",
		"properties": map[string]interface{}{
			"timeout": float64(60),
			"retries": float64(3),
		},
	})

	changes := Compare(old, updated)
	var props FieldChange
	for _, c := range changes {
		if c.Field == "properties" {
			props = c
		}
	}

	assert.Equal(t, Modified, props.Type)
	assert.Equal(t, []string{"properties"}, props.Path)
	assert.Len(t, props.SubChanges, 2)

	var timeout FieldChange
	modified := 0
	for _, sc := range props.SubChanges {
		if sc.Type == Modified {
			modified++
			timeout = sc
		}
	}
	assert.Equal(t, 1, modified)
	assert.Equal(t, "timeout", timeout.Field)
	assert.Equal(t, []string{"properties", "timeout"}, timeout.Path)

	// Nested entries are not double counted at the top level.
	s := Summarize(changes)
	assert.Equal(t, 1, s.Modified)
}

func TestCompareSkipsSystemFields(t *testing.T) {
	old := doc(map[string]interface{}{"id": float64(1), "createdBy": "alice", "name": "X"})
	updated := doc(map[string]interface{}{"id": float64(2), "createdBy": "bob", "name": "X"})

	changes := Compare(old, updated)
	assert.Len(t, changes, 1)
	assert.Equal(t, "name", changes[0].Field)
}

func TestCompareArraysWholesale(t *testing.T) {
	old := doc(map[string]interface{}{"tags": []interface{}{"a", "b"}})
	updated := doc(map[string]interface{}{"tags": []interface{}{"a", "c"}})

	changes := Compare(old, updated)
	assert.Len(t, changes, 1)
	assert.Equal(t, Modified, changes[0].Type)
	assert.Nil(t, changes[0].SubChanges)
}

func TestCompareTypeMismatch(t *testing.T) {
	old := doc(map[string]interface{}{"config": map[string]interface{}{"a": float64(1)}})
	updated := doc(map[string]interface{}{"config": "inline"})

	changes := Compare(old, updated)
	assert.Len(t, changes, 1)
	assert.Equal(t, Modified, changes[0].Type)
	assert.Nil(t, changes[0].SubChanges)
}

func TestChangedFields(t *testing.T) {
	old := doc(map[string]interface{}{"name": "X", "status": "active"})
	updated := doc(map[string]interface{}{"name": "X", "status": "inactive", "owner": "ops"})

	fields := ChangedFields(old, updated)
	assert.Equal(t, []string{"owner", "status"}, fields)
}
