// Package profile turns a raw tabular customer record into the categorized,
// human-readable profile text used as prompt input, and derives heuristic
// insights from the raw field values.
package profile

import (
	"fmt"
	"strings"

	"rmreport/internal/schema"
)

// Record is one customer row keyed by field name. A missing key or a nil-like
// source value (empty or "nan") is absent.
type Record struct {
	order  []string
	values map[string]string
}

// ParseRecord pairs a comma-separated header line with a data line by
// position. Values are trimmed; empty and case-insensitive "nan" values are
// treated as absent but the field name is still recorded, preserving header
// order for output.
func ParseRecord(header, row string) Record {
	names := strings.Split(header, ",")
	values := strings.Split(row, ",")

	rec := Record{values: make(map[string]string, len(names))}
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rec.order = append(rec.order, name)

		if i >= len(values) {
			continue
		}
		value := strings.TrimSpace(values[i])
		if value == "" || strings.EqualFold(value, "nan") {
			continue
		}
		rec.values[name] = value
	}
	return rec
}

// Get returns the raw value for a field and whether it is present.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// FieldNames returns the field names in header order.
func (r Record) FieldNames() []string {
	return r.order
}

// Section is one category block of a formatted profile.
type Section struct {
	Category string
	Label    string
	Fields   []Field
}

// Field is one (name, description, display value) triple within a section.
type Field struct {
	Name        string
	Description string
	Display     string
}

// Profile is the formatted, categorized rendering of one customer record.
// Built once per customer and consumed only as prompt text.
type Profile struct {
	Sections []Section
	Insights []string
}

// valueLabels maps specific raw codes to their bilingual display labels.
// Unmapped values render verbatim.
var valueLabels = map[string]string{
	"Y":       "是(Yes)",
	"N":       "否(No)",
	"Male":    "男性",
	"Female":  "女性",
	"Single":  "單身",
	"Married": "已婚",
}

// DisplayValue renders a raw value for profile output: absent values as
// "N/A", mapped codes as raw(label), anything else unchanged.
func DisplayValue(value string, present bool) string {
	if !present {
		return "N/A"
	}
	if label, ok := valueLabels[value]; ok {
		return fmt.Sprintf("%s(%s)", value, label)
	}
	return value
}

// Format builds a Profile from a record and catalog. Fields without a schema
// entry are dropped from the categorized sections but remain visible to
// insight derivation through the raw record. Categories follow the fixed
// order in schema.Categories; empty categories are omitted.
func Format(rec Record, catalog schema.Catalog, includeInsights bool) Profile {
	byCategory := make(map[string][]Field)

	for _, name := range rec.order {
		fs, ok := catalog.Field(name)
		if !ok {
			continue
		}
		value, present := rec.Get(name)
		byCategory[fs.Category] = append(byCategory[fs.Category], Field{
			Name:        name,
			Description: fs.Description,
			Display:     DisplayValue(value, present),
		})
	}

	var p Profile
	for _, cat := range schema.Categories {
		fields := byCategory[cat.Name]
		if len(fields) == 0 {
			continue
		}
		p.Sections = append(p.Sections, Section{
			Category: cat.Name,
			Label:    cat.Label,
			Fields:   fields,
		})
	}

	if includeInsights {
		p.Insights = DeriveInsights(rec)
	}
	return p
}

// String renders the profile as prompt text.
func (p Profile) String() string {
	var sb strings.Builder
	sb.WriteString("Customer Data Analysis:\n")

	for _, sec := range p.Sections {
		sb.WriteString(fmt.Sprintf("\n%s(%s):\n", sec.Category, sec.Label))
		for _, f := range sec.Fields {
			sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", f.Name, f.Description, f.Display))
		}
	}

	if len(p.Insights) > 0 {
		sb.WriteString("\n\nKEY INSIGHTS TO CONSIDER:\n")
		for i, insight := range p.Insights {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, insight))
		}
	}
	return sb.String()
}

// riskLabels maps rpq_level values to their ordinal descriptions.
var riskLabels = map[string]string{
	"1": "Conservative",
	"2": "Conservative to Moderate",
	"3": "Moderate",
	"4": "Moderate to Aggressive",
	"5": "Aggressive",
}

// DeriveInsights runs the fixed battery of heuristic rules against the raw
// record. Each rule is independent and appends at most one insight; output
// order is rule order. Rules never fail; a rule whose fields are absent
// simply contributes nothing.
func DeriveInsights(rec Record) []string {
	var insights []string

	// Age and life stage.
	ageGroup, hasAge := rec.Get("age_group")
	lifeStage, hasStage := rec.Get("life_stage")
	if hasAge && hasStage {
		insights = append(insights, fmt.Sprintf("%s in age group %s", lifeStage, ageGroup))
	}

	// Wealth and cash allocation, with a zero-investment opportunity flag.
	trbRange, hasTRB := rec.Get("trb_range")
	allocCash, hasCash := rec.Get("allocation_cash")
	if hasTRB && hasCash {
		insights = append(insights, fmt.Sprintf("Total wealth %s with %s cash allocation", trbRange, allocCash))
		if allocInv, ok := rec.Get("allocation_inv"); ok && allocInv == "0.00%" {
			insights = append(insights, "No investment products held despite significant wealth - opportunity for portfolio diversification")
		}
	}

	// Securities trading without investment holdings.
	transSecurity, hasTrans := rec.Get("trans_security")
	hldgInv, _ := rec.Get("hldg_inv")
	if hasTrans && transSecurity != "0" && hldgInv == "N" {
		insights = append(insights, fmt.Sprintf("Active in securities trading (%s transactions) but no investment products held", transSecurity))
	}

	// Risk profile.
	if rpqLevel, ok := rec.Get("rpq_level"); ok {
		desc, ok := riskLabels[rpqLevel]
		if !ok {
			desc = fmt.Sprintf("Level %s", rpqLevel)
		}
		insights = append(insights, fmt.Sprintf("Risk profile: %s", desc))
	}

	// Single parent.
	child, _ := rec.Get("child")
	ms, _ := rec.Get("ms")
	if child == "Y" && ms == "Single" {
		insights = append(insights, "single parent with children - may need education planning and protection products")
	}

	// Financial goal.
	if goal, ok := rec.Get("fhc_goal_type"); ok {
		insights = append(insights, fmt.Sprintf("Financial goal: %s", goal))
	}

	return insights
}
