package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentClone(t *testing.T) {
	original := Document{
		"name":       "Billing",
		"deployment": map[string]interface{}{"region": "eu-west"},
	}

	clone := original.Clone()
	clone["name"] = "Payments"
	clone["deployment"].(map[string]interface{})["region"] = "us-east"

	assert.Equal(t, "Billing", original["name"])
	assert.Equal(t, "eu-west", original["deployment"].(map[string]interface{})["region"])
}

func TestDocumentGetPath(t *testing.T) {
	doc := Document{
		"name":       "Billing",
		"deployment": map[string]interface{}{"region": "eu-west"},
	}

	value, ok := doc.GetPath([]string{"deployment", "region"})
	assert.True(t, ok)
	assert.Equal(t, "eu-west", value)

	_, ok = doc.GetPath([]string{"deployment", "zone"})
	assert.False(t, ok)

	_, ok = doc.GetPath([]string{"name", "nested"})
	assert.False(t, ok)
}

func TestDocumentSetPath(t *testing.T) {
	doc := Document{"name": "Billing"}

	doc.SetPath([]string{"status"}, "active")
	doc.SetPath([]string{"deployment", "region"}, "eu-west")

	assert.Equal(t, "active", doc["status"])
	value, ok := doc.GetPath([]string{"deployment", "region"})
	assert.True(t, ok)
	assert.Equal(t, "eu-west", value)
}

func TestStringListContains(t *testing.T) {
	fields := StringList{"status", "deployment.region"}

	assert.True(t, fields.Contains("status"))
	assert.True(t, fields.Contains("deployment.region"))
	assert.False(t, fields.Contains("name"))
}
