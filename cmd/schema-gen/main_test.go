package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGroupSchemaCollectsDefinitions(t *testing.T) {
	for _, group := range schemaGroups() {
		t.Run(group.Name, func(t *testing.T) {
			schema := generateGroupSchema(group)

			defs, ok := schema["$defs"].(map[string]any)
			require.True(t, ok)
			assert.GreaterOrEqual(t, len(defs), len(group.Types))
		})
	}
}

func TestBasketSchemaDescribesPlan(t *testing.T) {
	schema := generateGroupSchema(schemaGroups()[0])
	path := filepath.Join(t.TempDir(), "basket.json")
	require.NoError(t, writeSchema(schema, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Defs map[string]struct {
			Properties map[string]any `json:"properties"`
		} `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	plan, ok := doc.Defs["OptimizedBasketPlan"]
	require.True(t, ok)
	assert.Contains(t, plan.Properties, "shoppingLists")
	assert.Contains(t, plan.Properties, "originalCost")
	assert.Contains(t, doc.Defs, "BasketItemRequest")
}
