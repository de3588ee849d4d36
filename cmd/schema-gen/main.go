// Schema Generator
//
// Generates JSON Schema files for the HTTP API request and response types
// so clients can validate payloads without reading the Go sources.
//
// Usage:
//
//	go run ./cmd/schema-gen -out ./schemas
//
// Output:
//
//	<out>/basket.json
//	<out>/discounts.json
//	<out>/alerts.json
//	<out>/trends.json
//	<out>/common.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/kosarica/price-comparator/internal/alerts"
	"github.com/kosarica/price-comparator/internal/discounts"
	"github.com/kosarica/price-comparator/internal/handlers"
	"github.com/kosarica/price-comparator/internal/optimizer"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

// schemaGroups lists every API type by the endpoint family using it.
func schemaGroups() []SchemaGroup {
	return []SchemaGroup{
		{
			Name: "basket",
			Types: []any{
				// Request types
				handlers.BasketItemRequest{},
				// Response types
				optimizer.PlanItem{},
				optimizer.ShoppingList{},
				optimizer.OptimizedBasketPlan{},
			},
			Output: "basket.json",
		},
		{
			Name:   "discounts",
			Types:  []any{discounts.View{}},
			Output: "discounts.json",
		},
		{
			Name: "alerts",
			Types: []any{
				// Request types
				handlers.CreateAlertRequest{},
				handlers.UpdateAlertRequest{},
				// Response types
				alerts.PriceAlert{},
				alerts.PriceAlertView{},
				alerts.CheckResult{},
			},
			Output: "alerts.json",
		},
		{
			Name:   "trends",
			Types:  []any{handlers.TrendPoint{}},
			Output: "trends.json",
		},
		{
			Name: "common",
			Types: []any{
				handlers.ErrorResponse{},
				handlers.HealthResponse{},
			},
			Output: "common.json",
		},
	}
}

func main() {
	outputDir := flag.String("out", "./schemas", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, group := range schemaGroups() {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(*outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{
		DoNotReference: false,
		ExpandedStruct: false,
	}

	// Create combined definitions
	definitions := make(map[string]any)

	for _, t := range group.Types {
		schema := reflector.Reflect(t)

		// Get the type name from the schema
		typeName := ""
		if schema.Ref != "" {
			// Extract type name from $ref like "#/$defs/BasketItem"
			typeName = filepath.Base(schema.Ref)
		}

		// Add all definitions from this type's schema
		for name, def := range schema.Definitions {
			definitions[name] = def
		}

		// If there's a main type, add it to definitions too
		if typeName != "" && schema.Definitions[typeName] != nil {
			definitions[typeName] = schema.Definitions[typeName]
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://price-comparator.local/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", capitalize(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s API types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

// writeSchema writes a schema to a JSON file
func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
