// Package schema parses the customer data schema file into typed field metadata.
//
// The schema is free-form text, one field per line:
//
//	fieldName:category,description
//
// A description containing the literal 【多選】 marker denotes a multi-select
// field; the marker is stripped. Lines that do not match the grammar are
// skipped rather than rejected, so schema files can carry headings and notes.
package schema

import (
	"fmt"
	"os"
	"strings"
)

// MultiSelectMarker flags a multi-select field inside a description.
const MultiSelectMarker = "【多選】"

// FieldSchema describes one customer-record field. Immutable after parse.
type FieldSchema struct {
	Name        string
	Category    string
	Description string
	MultiSelect bool
}

// Category pairs a Chinese category name with its English display label.
type Category struct {
	Name  string
	Label string
}

// Categories is the fixed display order for profile sections. Categories not
// present in a record are omitted from output, never reordered.
var Categories = []Category{
	{"基礎信息", "Basic Information"},
	{"互動與偏好", "Interaction & Preferences"},
	{"財務數據", "Financial Data"},
	{"交易行為", "Transaction Behavior"},
	{"風險評估", "Risk Assessment"},
}

// Catalog is a read-only mapping of field name to schema. Built once per run.
type Catalog struct {
	fields map[string]FieldSchema
}

// Parse builds a Catalog from schema text. It never fails: malformed lines
// are ignored and the last occurrence of a duplicate name wins, so re-parsing
// the same text always yields an identical catalog.
func Parse(text string) Catalog {
	fields := make(map[string]FieldSchema)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		category, description, ok := strings.Cut(rest, ",")
		if !ok {
			continue
		}

		name = strings.TrimSpace(name)
		category = strings.TrimSpace(category)
		description = strings.TrimSpace(description)
		if name == "" || category == "" {
			continue
		}

		multiSelect := strings.Contains(description, MultiSelectMarker)
		if multiSelect {
			description = strings.TrimSpace(strings.ReplaceAll(description, MultiSelectMarker, ""))
		}

		fields[name] = FieldSchema{
			Name:        name,
			Category:    category,
			Description: description,
			MultiSelect: multiSelect,
		}
	}

	return Catalog{fields: fields}
}

// Load reads and parses a schema file. The only failure mode is I/O.
func Load(path string) (Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(string(content)), nil
}

// Field returns the schema for name, if defined.
func (c Catalog) Field(name string) (FieldSchema, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// Len returns the number of defined fields.
func (c Catalog) Len() int {
	return len(c.fields)
}

// CategoryLabel returns the English label for a Chinese category name, or the
// name itself when no label is defined.
func CategoryLabel(name string) string {
	for _, cat := range Categories {
		if cat.Name == name {
			return cat.Label
		}
	}
	return name
}
